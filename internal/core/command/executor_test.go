package command

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// ============================================================
// Mocks
// ============================================================

type mockStore struct {
	mu      sync.Mutex
	values  map[string]resp.Value
	lastTTL *time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{values: make(map[string]resp.Value)}
}

func (m *mockStore) Get(key string) (resp.Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockStore) Set(key string, value resp.Value, ttl *time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.lastTTL = ttl
}

type mockRecorder struct {
	commands map[string]int
	failures map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{commands: map[string]int{}, failures: map[string]int{}}
}

func (m *mockRecorder) CommandProcessed(name string) { m.commands[name]++ }
func (m *mockRecorder) RequestFailed(kind string)    { m.failures[kind]++ }

// ============================================================
// Execute Tests
// ============================================================

func TestExecutor_Execute(t *testing.T) {
	store := newMockStore()
	e := NewExecutor(store)

	tests := []struct {
		name string
		cmd  Command
		want resp.Value
	}{
		{"ping", Ping{Reply: resp.SimpleString("PONG")}, resp.SimpleString("PONG")},
		{"echo", Echo{Reply: resp.BulkText("hi")}, resp.BulkText("hi")},
		{"get missing", Get{Key: resp.BulkText("missing")}, resp.NilBulkString()},
		{"set", Set{Key: resp.BulkText("k"), Value: resp.BulkText("v")}, resp.SimpleString("OK")},
		{"get present", Get{Key: resp.BulkText("k")}, resp.BulkText("v")},
		{"config", Config{}, resp.Array()},
		{"command", Introspect{}, resp.Array()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Execute(tt.cmd)
			if !got.Equal(tt.want) {
				t.Errorf("Execute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutor_SetPassesTTL(t *testing.T) {
	store := newMockStore()
	e := NewExecutor(store)

	ms := uint64(5000)
	e.Execute(Set{Key: resp.BulkText("k"), Value: resp.BulkText("v"), ExpiryMS: &ms})
	if store.lastTTL == nil || *store.lastTTL != 5*time.Second {
		t.Errorf("ttl = %v, want 5s", store.lastTTL)
	}

	e.Execute(Set{Key: resp.BulkText("k"), Value: resp.BulkText("v")})
	if store.lastTTL != nil {
		t.Errorf("ttl = %v, want nil", *store.lastTTL)
	}
}

func TestMsToDuration_Saturates(t *testing.T) {
	if got := msToDuration(^uint64(0)); got <= 0 {
		t.Errorf("msToDuration(max) = %v, want positive", got)
	}
	if got := msToDuration(1500); got != 1500*time.Millisecond {
		t.Errorf("msToDuration(1500) = %v", got)
	}
}

// ============================================================
// Handle Tests
// ============================================================

func TestExecutor_Handle(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantReply    string
		wantConsumed int
	}{
		{
			name:         "ping",
			input:        "*1\r\n$4\r\nPING\r\n",
			wantReply:    "+PONG\r\n",
			wantConsumed: 14,
		},
		{
			name:         "inline ping",
			input:        "PING\r\n",
			wantReply:    "+PONG\r\n",
			wantConsumed: 6,
		},
		{
			name:         "echo",
			input:        "*2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n",
			wantReply:    "$5\r\nhello\r\n",
			wantConsumed: 25,
		},
		{
			name:         "incomplete frame waits",
			input:        "*2\r\n$4\r\nECHO\r\n$5\r\nhel",
			wantReply:    "",
			wantConsumed: 0,
		},
		{
			name:         "unrecognized bytes",
			input:        "hello world\r\n",
			wantReply:    "-ERR failed to parse request\r\n",
			wantConsumed: 13,
		},
		{
			name:         "malformed number",
			input:        "*x\r\n",
			wantReply:    "-ERR failed to parse request\r\n",
			wantConsumed: 4,
		},
		{
			name:         "unknown command",
			input:        "*1\r\n$3\r\nFOO\r\n",
			wantReply:    "-ERR unknown command 'FOO'\r\n",
			wantConsumed: 13,
		},
		{
			name:         "command name with CRLF stays one reply",
			input:        "*1\r\n$8\r\nFOO\r\n+OK\r\n",
			wantReply:    "-ERR unknown command 'FOO  +OK'\r\n",
			wantConsumed: 18,
		},
		{
			name:         "bulk length over limit",
			input:        "*2\r\n$3\r\nSET\r\n$2147483647\r\nabc",
			wantReply:    "-ERR failed to parse request\r\n",
			wantConsumed: 29,
		},
		{
			name:         "arrays nested too deep",
			input:        strings.Repeat("*1\r\n", resp.MaxDepth+1) + ":1\r\n",
			wantReply:    "-ERR failed to parse request\r\n",
			wantConsumed: 4*(resp.MaxDepth+1) + 4,
		},
		{
			name:         "pipelined with trailing partial",
			input:        "PING\r\n*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPI",
			wantReply:    "+PONG\r\n+PONG\r\n",
			wantConsumed: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(newMockStore())
			reply, consumed := e.Handle([]byte(tt.input))
			if string(reply) != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
			if consumed != tt.wantConsumed {
				t.Errorf("consumed = %d, want %d", consumed, tt.wantConsumed)
			}
		})
	}
}

func TestExecutor_HandleSetThenGet(t *testing.T) {
	e := NewExecutor(newMockStore())

	reply, _ := e.Handle([]byte("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"))
	if string(reply) != "+OK\r\n" {
		t.Fatalf("SET reply = %q", reply)
	}
	reply, _ = e.Handle([]byte("*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"))
	if string(reply) != "$1\r\nv\r\n" {
		t.Errorf("GET reply = %q", reply)
	}
	reply, _ = e.Handle([]byte("*2\r\n$3\r\nGET\r\n$1\r\nx\r\n"))
	if string(reply) != "$-1\r\n" {
		t.Errorf("GET missing reply = %q", reply)
	}
}

func TestExecutor_RecordsOutcomes(t *testing.T) {
	rec := newMockRecorder()
	e := NewExecutor(newMockStore(), WithRecorder(rec))

	e.Handle([]byte("PING\r\n"))
	e.Handle([]byte("*1\r\n$3\r\nFOO\r\n"))
	e.Handle([]byte("garbage"))

	if rec.commands["PING"] != 1 {
		t.Errorf("PING count = %d, want 1", rec.commands["PING"])
	}
	if rec.failures[FailureCommand] != 1 {
		t.Errorf("command failures = %d, want 1", rec.failures[FailureCommand])
	}
	if rec.failures[FailureParse] != 1 {
		t.Errorf("parse failures = %d, want 1", rec.failures[FailureParse])
	}
}
