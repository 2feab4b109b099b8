// Package store provides the SQLite-backed local mirror for synced Todoist data.
//
// The store implements keyed upserts over tables whose schema is not known
// ahead of time:
//   - Tables are created on first write, column types inferred from the first batch
//   - Unseen fields extend the table with ALTER TABLE ADD COLUMN (when allowed)
//   - Existing keys are fully replaced: every known column is overwritten
//   - Foreign keys are declared in the DDL for downstream query tools
//
// # Column Registry
//
// Each table's columns are tracked in an ordered, typed registry that is
// loaded lazily from PRAGMA table_info and only extended after a write
// transaction commits. A rolled-back ALTER never leaks into the registry.
//
// # Database Configuration
//
//   - WAL mode: readers see committed pages while a sync is running
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=OFF: Relations are declared, not enforced
//
// Nested JSON values (objects, arrays) are stored as canonical JSON TEXT.
package store
