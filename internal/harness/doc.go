// Package harness runs conformance scenarios against the compiler.
//
// A scenario names a program, its input and initial tape, and what the
// program must do. The harness compiles it, executes both the raw parse tree
// and the optimized tree on the reference interpreter, and fails if they
// disagree in output, final pointer or any tape cell. Expectations and
// assertions are then checked against the optimized run.
//
// # Scenario Format
//
//	name: hello_byte
//	description: "8*8+1 printed as a byte"
//	source: "++++++++[>++++++++<-]>+."
//	input: ""
//	step_limit: 1000000
//	tape: { 0: 0 }
//	options:
//	  decmove: false
//	  fixpoint: false
//	  no_glider: false
//	  no_memmove: false
//	expect:
//	  output: "A"
//	  pointer: 1
//	  cells: { 0: 0, 1: 65 }
//	assertions:
//	  - type: absent
//	    kind: loop
//	  - type: node_count
//	    kind: mult_add
//	    count: 1
//	  - type: code_contains
//	    text: "putchar(p[1]);"
//
// source_file may replace source; it is resolved relative to the scenario
// file. Tape indices and the expected pointer are relative to the origin.
// Kinds use the snake_case names printed by ir.Kind.
//
// # Assertion Types
//
//   - contains: the optimized tree holds at least one node of kind
//   - absent: the optimized tree holds no node of kind
//   - node_count: the optimized tree holds exactly count nodes of kind
//   - code_contains: the generated C contains text
//
// # Deterministic Testing
//
// Every scenario compiles through a fresh in-memory artifact store, twice:
// the second compile must be a cache hit with byte-identical code. Generated
// C is compared against testdata/golden/{name}.golden by RunWithGolden.
package harness
