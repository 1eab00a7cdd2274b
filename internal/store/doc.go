// Package store provides the SQLite-backed graph storage that translated
// queries run against.
//
// The schema has two tables:
//   - nodes: id, optional label, JSON property map
//   - edges: id, source_id and target_id referencing nodes, type, JSON property map
//
// Ids come from AUTOINCREMENT columns and are never reused, so a deleted
// node's id cannot silently reappear in a later result.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds (configurable)
//   - foreign_keys=ON: An edge can never outlive its endpoints
//
// The connection pool is limited to a single connection, so at most one
// transaction writes at a time. Queries reach the database through the
// Beginner and Tx interfaces so the executor can be tested against mocks
// (see the mocks subpackage).
package store
