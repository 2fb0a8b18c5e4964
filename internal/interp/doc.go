// Package interp executes IR trees directly over a byte tape.
//
// It is the reference semantics for every node kind and exists to check
// the compiler, not to run programs for users: tests and the conformance
// harness run the raw parse and the optimized tree side by side and compare
// output, tape and pointer.
package interp
