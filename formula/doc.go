// Package formula implements the report formula language.
//
// A formula is a single expression over numbers, strings, arrays, objects
// and variables, combined with the binary operators
//
//	^  * /  + -  == != < > <= >=  && ||
//
// listed from tightest to loosest binding. Any primary value may be
// followed by a chain of ".name", "[expr]" and "(args)" suffixes. A leading
// "-" is read as "0 -".
//
// Evaluation happens in three steps: [Parse] produces the infix [Expr]
// sequence, [ToPostfix] reorders it for a stack machine, and
// [Program.Eval] runs it against a [Resolver]. [Compile] combines the first
// two and [Evaluate] all three:
//
//	v, err := formula.Evaluate(ctx, `data.items.length * 2`, scope)
//
// Errors carry the offending position. [ParseError] reports malformed text
// and [EvaluateError] an invalid operation; both reach callers wrapped in a
// [FormulaError] that also names the source.
//
// # Values
//
// [Value] is a closed set of kinds. Objects expose only their own keys, and
// arrays, strings and dates a short fixed list of members ([MemberNames]),
// so formulas cannot reach anything else through member access.
//
// # Scope
//
// A [Scope] is a stack of bindings resolved innermost first. Bindings hold a
// fixed value, a [Thunk] evaluated on every lookup, or a [Cell] whose
// contents may be updated later. Scope bindings shadow the built-in table
// returned by [DefaultBuiltins].
package formula
