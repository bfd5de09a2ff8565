// Package sqlite provides a unified SQLite-based implementation of the
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - TenantStore: tenant records
//   - DocumentStore: document and chunk persistence
//   - SheetStore: tenant spreadsheet bindings
//   - ConversationStore: append-only chat turns
//   - AuditStore: external side-effect log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Embeddings
//
// Embedding vectors are stored as JSON-encoded float arrays. A malformed
// stored embedding decodes to nil rather than failing the read; the
// similarity ranker scores nil vectors as zero.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
