// Package storage provides persistence backends for habits and their logs.
//
// Two interchangeable implementations of the Store interface exist:
//
//   - MemoryStore: fast, volatile, everything lost on Close. The default.
//   - SQLiteStore: durable single-file storage using WAL mode, suitable for
//     single-instance deployments that must survive restarts.
//
// Callers hold a Store and never know which variant is behind it; the two
// behave identically except for durability. Both assign strictly increasing
// integer ids starting at 1 and never reuse an id, even after deletion.
//
// The backend is chosen once at process startup (see cmd/habitd). Each
// store is constructed from an explicit config and owns its resources; the
// package keeps no global state.
package storage
