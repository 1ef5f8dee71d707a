// Package ledger persists pipeline runs and per-commit frame outcomes in
// SQLite.
//
// The ledger is an append-only record for the `texlapse runs` command and
// for debugging partial runs; pipeline behavior never depends on its
// contents. Schema changes bump schemaVersion in store.go; users delete the
// database file to adopt a new schema.
package ledger
