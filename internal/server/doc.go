// Package server exposes the query engine as Model Context Protocol tools.
//
// Tools:
//
//	execute-cypher  run one query (query, params) and return the result
//	                or a structured failure as JSON text
//	graph-summary   node and relationship counts by label and type
//
// Parameter numbers arrive as JSON: a number without a fraction or
// exponent is an integer, anything else is a float.
package server
