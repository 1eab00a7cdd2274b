// Package queryir describes the relational statements produced by the
// translator and consumed by the executor.
//
// ARCHITECTURE:
//
//	[cypher AST] → [querysql.Translate] → [queryir.Statement list] → [engine]
//
// A TranslationResult is an ordered list of Statements. The executor keeps
// a binding table: rows mapping pattern variable names to storage row ids,
// starting from a single empty row. Every statement runs once per binding
// row, in order, inside one transaction:
//
//   - ModeExpand runs a SELECT whose columns are row ids and extends the
//     row once per result, binding Binds in column order. Rows with no
//     result are dropped, or kept unchanged when Optional is set.
//   - ModeInsert runs an INSERT and binds the new row id to Binds[0],
//     unless the row already binds SkipIfBound.
//   - ModeExec runs an UPDATE or DELETE.
//   - ModeProject runs a SELECT of (id, properties) pairs and shapes one
//     output row per result through Columns.
//
// ARGUMENTS:
//
// Statement text never contains values. Every value travels as a
// positional `?` argument: either a constant resolved at translation time
// or a VarRef to a row id from the current binding row.
//
// Statements are plain data. Fingerprint hashes a canonical rendering, so
// identical translations always have identical fingerprints.
package queryir
