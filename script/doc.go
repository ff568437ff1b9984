// Package script evaluates trusted data-producing scripts.
//
// Reports may compute their input data with a script instead of loading it
// from a document or URL. Scripts are expr-lang expressions evaluated by an
// [Evaluator]; the result is a plain Go value (maps, slices, strings,
// numbers) that callers convert with formula.FromNative.
//
// Scripts run only when the caller explicitly allows unsafe evaluation.
// Even then identifiers and members starting with "__" or "$$" are replaced
// by nil before the program is type-checked, and programs are limited in
// size.
package script
