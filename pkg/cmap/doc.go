// Package cmap provides a string-keyed concurrent map split into shards.
//
// Each shard owns a plain map guarded by its own RWMutex; a key always lives
// in the shard selected by its murmur3 hash. With one shard the map behaves
// like a single map behind a single lock.
//
// Usage:
//
//	m := cmap.NewWithShards[Entry](16)
//	m.Set("key", entry)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are safe for concurrent use. Get and Count take read locks,
// Set takes the write lock of one shard.
package cmap
