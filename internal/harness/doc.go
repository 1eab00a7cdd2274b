// Package harness runs YAML query scenarios against a fresh database and
// compares the outcome with expectations and golden snapshots.
//
// # Scenario Format
//
//	name: social_graph
//	description: "What this scenario validates"
//	setup:                      # must succeed, not snapshotted
//	  - query: "CREATE (:User {name: 'Alice'})"
//	steps:
//	  - query: "MATCH (n:User) WHERE n.age > $min RETURN n"
//	    params: { min: 26 }
//	    expect:
//	      count: 1
//	      rows: [{ id: 1, name: "Alice", age: 30 }]
//	      stats: { nodes_created: 0 }
//	  - query: "MATCH (n:User RETURN n"
//	    expect:
//	      error: { kind: parse, code: PARSE_ERROR, line: 1, column: 15 }
//	assertions:
//	  - type: node_count
//	    label: User
//	    count: 1
//	  - type: edge_count
//	    rel_type: KNOWS
//	    count: 0
//	  - type: query
//	    query: "MATCH (n:User) RETURN n.name AS name"
//	    rows: [{ name: "Alice" }]
//
// Rows are compared in order and exactly; integers and floats are
// distinct (1 does not match 1.0). Stats are a subset match.
//
// # Determinism
//
// Every scenario runs in its own in-memory database with a step clock and
// a fixed trace id, so ids, rows and snapshots are identical on every run.
// Golden files live in testdata/golden/{name}.golden; regenerate with:
//
//	go test ./internal/harness -update
package harness
