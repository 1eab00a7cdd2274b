// Package cypher implements the front end of the query pipeline: a lexer
// and a recursive-descent parser for the supported Cypher subset.
//
// Parse never panics on malformed input. It returns either a complete
// *Query or a *ParseError pointing at the first offending character; a
// partially built query is never returned alongside an error.
//
// Supported clauses:
//
//	CREATE pattern, ...
//	MATCH pattern, ... [WHERE expr]
//	MERGE pattern
//	SET item, ...
//	[DETACH] DELETE variable, ...
//	RETURN expr [AS alias], ...
//
// Identifiers (variables, labels, relationship types, property keys) are
// restricted to ASCII letters, digits and underscore. Labels and types are
// later written into the store as bound values, but the restriction keeps
// every name that could reach generated SQL text within a safe set.
package cypher
