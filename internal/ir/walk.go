package ir

// Inspect traverses b in depth-first order, calling f for every node before
// its body. If f returns false, the body of that node is skipped.
func Inspect(b Block, f func(Node) bool) {
	for _, n := range b {
		if !f(n) {
			continue
		}
		switch n := n.(type) {
		case If:
			Inspect(n.Body, f)
		case Loop:
			Inspect(n.Body, f)
		}
	}
}

// Count returns the number of nodes in b, including nested bodies.
func Count(b Block) int {
	count := 0
	Inspect(b, func(Node) bool {
		count++
		return true
	})
	return count
}

// Contains reports whether any node in b (at any depth) has kind k.
func Contains(b Block, k Kind) bool {
	found := false
	Inspect(b, func(n Node) bool {
		if n.Kind() == k {
			found = true
		}
		return !found
	})
	return found
}

// Histogram counts nodes per kind, including nested bodies.
func Histogram(b Block) map[Kind]int {
	h := make(map[Kind]int)
	Inspect(b, func(n Node) bool {
		h[n.Kind()]++
		return true
	})
	return h
}

// Body returns the nested block of an If or Loop, or nil for other kinds.
func Body(n Node) Block {
	switch n := n.(type) {
	case If:
		return n.Body
	case Loop:
		return n.Body
	}
	return nil
}
