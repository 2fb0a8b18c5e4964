// Package ir defines the intermediate representation of tape programs.
//
// A program is a Block: an ordered sequence of Nodes. Nodes form a closed set
// of kinds (see Kind), two of which (If, Loop) nest a Block of their own.
// This package contains type definitions and helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key invariants:
//   - Cell values are uint8, so every value and delta is reduced mod 256
//   - Offsets are relative to the pointer at entry of the enclosing Block
//   - Nodes are values; passes build new Blocks instead of mutating old ones
//   - Equality is structural (Equal, EqualBlocks), never pointer identity
package ir
