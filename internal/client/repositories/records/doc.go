// Package records provides the local key/value persistence used by the
// credential store and the query history. Values are opaque bytes; callers
// own their encoding.
//
// SQLiteRepository backs the CLI and lives in the "records" table created by
// the embedded migrations. MemoryRepository is a process-local substitute for
// tests and for running without a database file.
package records
