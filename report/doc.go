// Package report compiles report definitions into documents.
//
// A [Report] is a tree of typed [Item] nodes whose fields hold static
// values or formulas. Producing a document takes four steps, each a method
// of [Engine]:
//
//   - [Engine.FetchSource] loads the input data.
//   - [Engine.ApplyTransforms] reshapes it through the report's transforms.
//   - [Engine.Compile] evaluates every widget against the data.
//   - [Engine.Serialize] writes the result as html, pdf, json or csv.
//
// [Engine.Generate] runs all four.
//
// Widgets compile strictly in document order on a single goroutine. They
// share one [formula.Scope], and bindings pushed by one widget (a loop
// variable, a SetVar) are visible to the formulas of its descendants and
// must be popped before it returns.
package report
