// Package memory provides the in-memory key-value store behind respkv.
//
// Entries are written by SET and read by GET. An entry written with an
// expiry stays in the map after it lapses: reads evaluate the expiry against
// the monotonic clock and report the key as absent, but nothing removes it
// until a later SET overwrites it. There is no background sweeper.
//
// Thread Safety:
//
// All operations are safe for concurrent use. With one shard (the default)
// a single RWMutex guards every key; more shards split the keyspace by
// murmur3 hash without changing what callers observe.
package memory
