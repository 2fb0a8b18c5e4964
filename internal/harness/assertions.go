package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/tapec/internal/ir"
)

// AssertionError is returned when an assertion fails. It carries the
// optimized tree so the failure can be read without rerunning.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Tree     string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Tree != "" {
		fmt.Fprintf(&buf, "\nOptimized tree:\n%s", e.Tree)
	}
	return buf.String()
}

// assertContains checks that at least one node of the kind is present,
// at any depth.
func assertContains(tree ir.Block, a Assertion) error {
	k, _ := ir.ParseKind(a.Kind)
	if ir.Contains(tree, k) {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("at least one %s node", k),
		Actual:   "none found",
		Tree:     ir.Sprint(tree),
	}
}

// assertAbsent checks that no node of the kind is present, at any depth.
func assertAbsent(tree ir.Block, a Assertion) error {
	k, _ := ir.ParseKind(a.Kind)
	n := ir.Histogram(tree)[k]
	if n == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: fmt.Sprintf("no %s nodes", k),
		Actual:   fmt.Sprintf("%d found", n),
		Tree:     ir.Sprint(tree),
	}
}

// assertNodeCount checks the exact number of nodes of the kind.
func assertNodeCount(tree ir.Block, a Assertion) error {
	k, _ := ir.ParseKind(a.Kind)
	n := ir.Histogram(tree)[k]
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNodeCount,
		Expected: fmt.Sprintf("%d %s nodes", a.Count, k),
		Actual:   fmt.Sprintf("%d", n),
		Tree:     ir.Sprint(tree),
	}
}

func assertCodeContains(code string, a Assertion) error {
	if strings.Contains(code, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCodeContains,
		Expected: fmt.Sprintf("generated code containing %q", a.Text),
		Actual:   "not found",
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
// Assertions are independent: one failure does not stop the rest.
func EvaluateAssertions(tree ir.Block, code string, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertContains:
			err = assertContains(tree, a)
		case AssertAbsent:
			err = assertAbsent(tree, a)
		case AssertNodeCount:
			err = assertNodeCount(tree, a)
		case AssertCodeContains:
			err = assertCodeContains(code, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}
