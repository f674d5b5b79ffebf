// Package catalog persists media catalog entries and folder registrations
// in SQLite. The store is the single source of truth for the reconciliation
// and deduplication engines, which write to it exclusively through batched
// Mutation values so user-owned metadata columns can never be clobbered by
// an identity refresh.
package catalog
