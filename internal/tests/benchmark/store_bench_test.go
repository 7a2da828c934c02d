package benchmark

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// BenchmarkStoreSet benchmarks inserts into a store of growing size.
func BenchmarkStoreSet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)
		value := resp.BulkText("value")

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			store.Set(benchKey(count+i), value, nil)
		}

		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkStoreGet benchmarks lookups of live keys.
func BenchmarkStoreGet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		keys := prefillStore(store, count)

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if _, ok := store.Get(keys[i%len(keys)]); !ok {
				b.Fatal("Get missed a prefilled key")
			}
		}
	})
}

// BenchmarkStoreGetExpired benchmarks lookups that hit the lazy expiry path.
func BenchmarkStoreGetExpired(b *testing.B) {
	ttl := time.Duration(0)
	store := memory.New()
	value := resp.BulkText("value")
	for i := 0; i < b.N; i++ {
		store.Set(benchKey(i), value, &ttl)
	}
	time.Sleep(time.Millisecond)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, ok := store.Get(benchKey(i)); ok {
			b.Fatal("Get returned an expired key")
		}
	}
}

// BenchmarkStoreParallel benchmarks a 90/10 read/write mix across shard
// counts.
func BenchmarkStoreParallel(b *testing.B) {
	for _, shards := range ShardCounts {
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			store := memory.New(memory.WithShards(shards))
			keys := prefillStore(store, 10000)
			value := resp.BulkText("value")
			var seq atomic.Int64

			b.ResetTimer()
			b.ReportAllocs()

			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					i := int(seq.Add(1))
					key := keys[i%len(keys)]
					if i%10 == 0 {
						store.Set(key, value, nil)
					} else {
						store.Get(key)
					}
				}
			})
		})
	}
}
