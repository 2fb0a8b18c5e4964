package ir

// Equal reports whether two nodes have the same kind and field values.
// Nested bodies are compared element by element.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case If:
		y, ok := b.(If)
		return ok && EqualBlocks(x.Body, y.Body)
	case Loop:
		y, ok := b.(Loop)
		return ok && EqualBlocks(x.Body, y.Body)
	default:
		// Every remaining kind is a struct of comparable fields, so interface
		// comparison is safe once b is known not to carry a body.
		switch b.(type) {
		case If, Loop:
			return false
		}
		return a == b
	}
}

// EqualBlocks reports whether two blocks are structurally equal.
func EqualBlocks(a, b Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
