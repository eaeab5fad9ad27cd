// Package db provides a standardized interface for key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction with
// various database backends while abstracting implementation details.
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete), key
//     enumeration (Keys), metadata retrieval (GetInfo) and persistence
//     operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows callers to
//     discover supported operations at runtime.
//
//   - Database Information: The DatabaseInfo structure reports the database state,
//     including size estimates, the number of keys, implementation type and
//     implementation-specific metadata.
//
// Note on Write Indices:
//   - All write operations require a write-index parameter that serves as a logical
//     timestamp. It is used to reject stale writes and to advance the database's
//     logical clock.
//   - The write-index only increases monotonically. Attempts to set a write-index
//     lower than the current one are ignored.
//   - Read operations do not take an index, they always see the latest applied write.
//
// Related Packages:
//
// The engines/maple package provides a sharded in-memory implementation of the KVDB
// interface. The testing package provides a conformance suite (RunKVDBTests) that
// every implementation should pass.
package db
