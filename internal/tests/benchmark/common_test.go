package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// ShardCounts compares a single lock against sharded stores.
var ShardCounts = []int{1, 16, 64}

func benchKey(i int) string {
	return fmt.Sprintf("bench:key:%d", i)
}

// prefillStore prefills a store with count keys.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	value := resp.BulkText("value")
	for i := 0; i < count; i++ {
		keys[i] = benchKey(i)
		store.Set(keys[i], value, nil)
	}
	return keys
}

// setRequest encodes SET key value as a client would send it.
func setRequest(key, value string) []byte {
	return resp.Serialize(resp.Array(resp.BulkText("SET"), resp.BulkText(key), resp.BulkText(value)))
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
