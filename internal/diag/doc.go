// Package diag defines the diagnostic model shared by every stage of an
// annotation build.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the annotation extractor, the fragment parser and the document
//     accumulator.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting.
//   - Own the run-level failure policy: a ThrowLevel compared against the
//     highest recorded severity, and the AggregateError returned on failure.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – stable identifier of the issue class (see codes.go).
//   - Message – short, actionable text.
//   - Origin – the Location (file, line, column) of the annotation at fault.
//
// A Bag is append-only for the lifetime of one run. Nothing in this package is
// global: each build constructs its own Bag, so concurrent builds never share
// diagnostics.
//
// # Failure policy
//
// Diagnostics never abort a run. After all fragments are merged the
// orchestrator asks ThrowLevel.Fails whether the highest recorded severity is
// at or above the configured threshold; if so the run returns an
// *AggregateError carrying the full list so authors can fix every problem in
// one pass.
//
// Package diag does not perform formatting or IO. Rendering lives in
// internal/diagfmt.
package diag
