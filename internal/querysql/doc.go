// Package querysql translates a parsed Cypher query into parameterized
// SQLite statements over the nodes and edges tables.
//
// Translate is pure: no I/O, no randomness, no map-order dependence.
// Identical (query, params) input always yields identical statements.
//
// CRITICAL: values are NEVER interpolated into statement text. Labels,
// relationship types, property paths and property values all travel as
// `?` arguments. Statement text only ever contains fixed SQL and
// generated table aliases (n0, e1, p2, ...).
package querysql
