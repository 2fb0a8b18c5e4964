// Package parser converts tape-language source text into raw IR.
//
// Only the nine significant characters + - < > . , [ ] @ are read; every
// other byte is a comment. Each opcode becomes exactly one primitive node
// and each bracket pair becomes a Loop, so the result is the naive
// one-to-one tree that the optimizer passes start from.
package parser
