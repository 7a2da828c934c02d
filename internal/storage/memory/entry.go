package memory

import (
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// Entry is a stored value plus the data needed to evaluate its expiry.
// Entries are immutable; SET replaces the whole entry.
type Entry struct {
	Value      resp.Value
	TTL        time.Duration
	HasTTL     bool
	InsertedAt time.Time
}

// Expired reports whether the entry has lapsed at now.
//
// Elapsed time is compared at millisecond resolution, so an entry with a TTL
// of 50ms is still live 50ms after insertion and gone at 51ms.
func (e Entry) Expired(now time.Time) bool {
	if !e.HasTTL {
		return false
	}
	return now.Sub(e.InsertedAt).Milliseconds() > e.TTL.Milliseconds()
}
