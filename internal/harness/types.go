package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every check matched.
	Pass bool `json:"pass"`

	// Errors holds validation messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Output is what the optimized program wrote.
	Output string `json:"output"`

	// Debug is the text the program's debug dumps produced.
	Debug string `json:"debug,omitempty"`

	// Pointer is the final pointer, relative to the origin.
	Pointer int `json:"pointer"`

	// Code is the generated C program.
	Code string `json:"code"`

	// Optimized is the printed optimized tree.
	Optimized string `json:"optimized"`

	RawNodes       int `json:"raw_nodes"`
	OptimizedNodes int `json:"optimized_nodes"`

	// cells is the final tape, used for expect.cells.
	cells []byte
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
