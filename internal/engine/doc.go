// Package engine implements the query executor: the only component that
// touches storage.
//
// Execute runs the pipeline for one query:
//
//  1. Parse the text (cypher.Parse); a *cypher.ParseError is returned as is
//  2. Translate the AST (querysql.Translate); a *querysql.TranslationError
//     is returned before any transaction is opened
//  3. Begin one transaction and run every statement in order against a
//     binding table of variable -> row id
//  4. Commit, or roll back on the first failure and return an *ExecutionError
//  5. Shape the RETURN rows and attach count, stats, trace id and TimeMS
//
// Partial mutation is never visible: either every statement of a query
// commits or none does. Describe turns any error into the structured
// Failure reported by the CLI and MCP surfaces.
package engine
