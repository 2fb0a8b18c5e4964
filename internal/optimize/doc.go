// Package optimize rewrites raw IR into closed-form operations.
//
// Passes are pure functions from one Block to a new Block:
//
//   - ExtractGliders replaces "ramp up / scan / ramp down" idioms with Glider
//   - ExtractDecMoves (optional) replaces deep saturating-move nests with DecMove
//   - Fold cancels pointer moves into offsets, fuses adjacent writes and
//     reduces loops via ReduceSimpleLoop, ReduceComplexLoop and ReduceIfLoop
//   - ExtractMemMoves collapses long copy+clear chains into MemMove
//
// Every recognizer is fail-soft: when it cannot prove its preconditions
// from the syntax alone it declines, and the caller keeps the unreduced but
// correct form. Passes/Run assemble these into the compile pipeline.
package optimize
