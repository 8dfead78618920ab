// Package engine owns the session-scoped, in-memory SQL engine that backs the
// catalog. It wraps a single SQLite connection (modernc.org/sqlite, no cgo) and
// exposes the handful of statements the catalog needs: CREATE TABLE with text
// columns, parameterized multi-row INSERT, DROP TABLE, the table catalog query
// and free-form queries returning a model.QueryResult.
//
// An Engine is created with Open at application start and released with Close.
// The in-memory database lives exactly as long as its one connection, so the
// pool is pinned to a single connection that is never recycled.
package engine
