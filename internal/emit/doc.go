// Package emit renders optimized IR trees as target source text.
//
// The only backend is C. The generated program owns a static zero-filled
// byte tape and a cell pointer that starts well inside it, so the negative
// offsets produced by the optimizer stay in bounds. Every node kind is
// rendered by a Visitor method; the emitter never inspects the tree beyond
// what it renders.
package emit
