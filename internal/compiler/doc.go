// Package compiler drives a compilation end to end: parse, run the
// optimization pipeline, render the target program. It also owns backend
// selection and the artifact cache lookup around that pipeline.
package compiler
