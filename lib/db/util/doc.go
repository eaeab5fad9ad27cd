// Package util provides small helpers shared by database implementations
// that satisfy the db.KVDB interface, like seeded string hashing for shard
// selection and seed generation.
package util
