package command

import (
	"errors"
	"testing"

	"github.com/yndnr/respkv/pkg/resp"
)

func req(args ...string) resp.Value {
	elems := make([]resp.Value, len(args))
	for i, a := range args {
		elems[i] = resp.BulkText(a)
	}
	return resp.Array(elems...)
}

// ============================================================
// Extract Tests - Shape
// ============================================================

func TestExtract_NotACommand(t *testing.T) {
	tests := []struct {
		name string
		req  resp.Value
	}{
		{"nil array", resp.NilArray()},
		{"empty array", resp.Array()},
		{"bare bulk string", resp.BulkText("PING")},
		{"integer name", resp.Array(resp.Integer(1))},
		{"nil bulk name", resp.Array(resp.NilBulkString())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.req)
			if !errors.Is(err, ErrNotACommand) {
				t.Errorf("Extract() error = %v, want %v", err, ErrNotACommand)
			}
		})
	}
}

func TestExtract_UnknownCommand(t *testing.T) {
	_, err := Extract(req("FLUSHALL"))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Extract() error = %v, want %v", err, ErrUnknownCommand)
	}
	got := ReplyFor(err)
	want := resp.Error("ERR unknown command 'FLUSHALL'")
	if !got.Equal(want) {
		t.Errorf("ReplyFor() = %v, want %v", got, want)
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"ping", "Ping", "PING", "pInG"} {
		cmd, err := Extract(req(name))
		if err != nil {
			t.Fatalf("Extract(%q) error = %v", name, err)
		}
		if cmd.Name() != "PING" {
			t.Errorf("Extract(%q).Name() = %q, want PING", name, cmd.Name())
		}
	}
}

// ============================================================
// Extract Tests - Arity and Types
// ============================================================

func TestExtract_Arity(t *testing.T) {
	tests := []struct {
		name string
		req  resp.Value
	}{
		{"ping with two args", req("PING", "a", "b")},
		{"echo without args", req("ECHO")},
		{"echo with two args", req("ECHO", "a", "b")},
		{"get without args", req("GET")},
		{"get with two args", req("GET", "a", "b")},
		{"set without args", req("SET")},
		{"set with key only", req("SET", "k")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.req)
			if !errors.Is(err, ErrWrongArity) {
				t.Errorf("Extract() error = %v, want %v", err, ErrWrongArity)
			}
		})
	}
}

func TestExtract_WrongType(t *testing.T) {
	tests := []struct {
		name string
		req  resp.Value
	}{
		{"ping integer", resp.Array(resp.BulkText("PING"), resp.Integer(1))},
		{"echo nil bulk", resp.Array(resp.BulkText("ECHO"), resp.NilBulkString())},
		{"get array key", resp.Array(resp.BulkText("GET"), resp.Array())},
		{"set integer value", resp.Array(resp.BulkText("SET"), resp.BulkText("k"), resp.Integer(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.req)
			if !errors.Is(err, ErrWrongType) {
				t.Errorf("Extract() error = %v, want %v", err, ErrWrongType)
			}
		})
	}
}

// ============================================================
// Extract Tests - Variants
// ============================================================

func TestExtract_Ping(t *testing.T) {
	cmd, err := Extract(req("PING"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := cmd.(Ping).Reply; !got.Equal(resp.SimpleString("PONG")) {
		t.Errorf("Reply = %v, want +PONG", got)
	}

	cmd, err = Extract(req("PING", "hello"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := cmd.(Ping).Reply; !got.Equal(resp.BulkText("hello")) {
		t.Errorf("Reply = %v, want bulk hello", got)
	}
}

func TestExtract_InlinePingMatchesArrayPing(t *testing.T) {
	inline, _, err := resp.Parse([]byte("PING\r\n"))
	if err != nil {
		t.Fatalf("Parse(inline) error = %v", err)
	}
	array, _, err := resp.Parse([]byte("*1\r\n$4\r\nPING\r\n"))
	if err != nil {
		t.Fatalf("Parse(array) error = %v", err)
	}

	a, err := Extract(inline)
	if err != nil {
		t.Fatalf("Extract(inline) error = %v", err)
	}
	b, err := Extract(array)
	if err != nil {
		t.Fatalf("Extract(array) error = %v", err)
	}
	if !a.(Ping).Reply.Equal(b.(Ping).Reply) {
		t.Errorf("inline = %v, array = %v", a, b)
	}
}

func TestExtract_EchoAndGet(t *testing.T) {
	cmd, err := Extract(req("ECHO", "hi"))
	if err != nil {
		t.Fatalf("Extract(ECHO) error = %v", err)
	}
	if got := cmd.(Echo).Reply; !got.Equal(resp.BulkText("hi")) {
		t.Errorf("Echo.Reply = %v", got)
	}

	cmd, err = Extract(resp.Array(resp.BulkText("GET"), resp.SimpleString("k")))
	if err != nil {
		t.Fatalf("Extract(GET) error = %v", err)
	}
	if got := cmd.(Get).Key; !got.Equal(resp.BulkText("k")) {
		t.Errorf("Get.Key = %v", got)
	}
}

func TestExtract_Placeholders(t *testing.T) {
	for _, r := range []resp.Value{req("CONFIG", "GET", "save"), req("COMMAND"), req("command", "DOCS")} {
		if _, err := Extract(r); err != nil {
			t.Errorf("Extract(%v) error = %v", r, err)
		}
	}
}

// ============================================================
// Extract Tests - SET Options
// ============================================================

func TestExtract_SetExpiry(t *testing.T) {
	tests := []struct {
		name   string
		req    resp.Value
		wantMS *uint64
	}{
		{"no option", req("SET", "k", "v"), nil},
		{"px", req("SET", "k", "v", "PX", "50"), u64(50)},
		{"ex", req("SET", "k", "v", "EX", "5"), u64(5000)},
		{"lower case ex", req("SET", "k", "v", "ex", "2"), u64(2000)},
		{"px zero", req("SET", "k", "v", "PX", "0"), u64(0)},
		{"ex then px", req("SET", "k", "v", "EX", "5", "PX", "100"), u64(100)},
		{"px then ex", req("SET", "k", "v", "PX", "100", "EX", "5"), u64(5000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Extract(tt.req)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			set := cmd.(Set)
			switch {
			case tt.wantMS == nil && set.ExpiryMS != nil:
				t.Errorf("ExpiryMS = %d, want nil", *set.ExpiryMS)
			case tt.wantMS != nil && set.ExpiryMS == nil:
				t.Errorf("ExpiryMS = nil, want %d", *tt.wantMS)
			case tt.wantMS != nil && *set.ExpiryMS != *tt.wantMS:
				t.Errorf("ExpiryMS = %d, want %d", *set.ExpiryMS, *tt.wantMS)
			}
		})
	}
}

func TestExtract_SetExEqualsPx(t *testing.T) {
	ex, err := Extract(req("SET", "k", "v", "EX", "5"))
	if err != nil {
		t.Fatalf("Extract(EX) error = %v", err)
	}
	px, err := Extract(req("SET", "k", "v", "PX", "5000"))
	if err != nil {
		t.Fatalf("Extract(PX) error = %v", err)
	}
	if *ex.(Set).ExpiryMS != *px.(Set).ExpiryMS {
		t.Errorf("EX 5 = %d ms, PX 5000 = %d ms", *ex.(Set).ExpiryMS, *px.(Set).ExpiryMS)
	}
}

func TestExtract_SetInvalidOption(t *testing.T) {
	tests := []struct {
		name string
		req  resp.Value
	}{
		{"unknown token", req("SET", "k", "v", "NX")},
		{"missing px value", req("SET", "k", "v", "PX")},
		{"missing ex value", req("SET", "k", "v", "EX")},
		{"non-numeric", req("SET", "k", "v", "EX", "soon")},
		{"negative", req("SET", "k", "v", "PX", "-1")},
		{"ex overflow", req("SET", "k", "v", "EX", "18446744073709551615")},
		{"integer token", resp.Array(resp.BulkText("SET"), resp.BulkText("k"), resp.BulkText("v"), resp.Integer(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.req)
			if !errors.Is(err, ErrInvalidOption) {
				t.Errorf("Extract() error = %v, want %v", err, ErrInvalidOption)
			}
		})
	}
}

func u64(n uint64) *uint64 { return &n }
