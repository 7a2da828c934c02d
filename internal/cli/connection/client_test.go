package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// fakeServer accepts one connection and hands it to handle.
func fakeServer(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return ln.Addr().String()
}

func readN(conn net.Conn, n int) string {
	buf := make([]byte, n)
	_, _ = io.ReadFull(conn, buf)
	return string(buf)
}

func TestNewClient(t *testing.T) {
	c := NewClient("localhost:6379", 0)
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
	}
	if c.Addr() != "localhost:6379" {
		t.Errorf("Addr() = %q, want %q", c.Addr(), "localhost:6379")
	}
}

func TestClient_Close_NoConnection(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	if err := c.Close(); err != nil {
		t.Errorf("Close without connection should not error: %v", err)
	}
}

func TestClient_Connect_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(addr, time.Second)
	if err := c.Connect(context.Background()); err == nil {
		t.Error("Connect to closed port should fail")
		c.Close()
	}
}

// ============================================================
// Request/reply
// ============================================================

func TestClient_Do_EncodesBulkArray(t *testing.T) {
	got := make(chan string, 1)
	addr := fakeServer(t, func(conn net.Conn) {
		want := "*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"
		got <- readN(conn, len(want))
		conn.Write([]byte("$2\r\nhi\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "ECHO", "hi")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !v.Equal(resp.BulkText("hi")) {
		t.Errorf("Do() = %v, want $\"hi\"", v)
	}
	if req := <-got; req != "*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n" {
		t.Errorf("request = %q", req)
	}
}

func TestClient_Do_SplitReply(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		readN(conn, len("*1\r\n$3\r\nGET\r\n"))
		conn.Write([]byte("$5\r\nhel"))
		time.Sleep(20 * time.Millisecond)
		conn.Write([]byte("lo\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "GET")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !v.Equal(resp.BulkText("hello")) {
		t.Errorf("Do() = %v, want $\"hello\"", v)
	}
}

func TestClient_Do_KeepsTrailingBytes(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		readN(conn, len("*1\r\n$4\r\nPING\r\n"))
		conn.Write([]byte("+PONG\r\n:7\r\n"))
		readN(conn, len("*1\r\n$4\r\nPING\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	first, err := c.Do(context.Background(), "PING")
	if err != nil {
		t.Fatalf("first Do() error = %v", err)
	}
	second, err := c.Do(context.Background(), "PING")
	if err != nil {
		t.Fatalf("second Do() error = %v", err)
	}
	if !first.Equal(resp.SimpleString("PONG")) || !second.Equal(resp.Integer(7)) {
		t.Errorf("replies = %v, %v", first, second)
	}
}

func TestClient_Do_ErrorReply(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		readN(conn, len("*1\r\n$3\r\nFOO\r\n"))
		conn.Write([]byte("-ERR unknown command 'FOO'\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "FOO")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	var se *ServerError
	if !errors.As(ReplyError(v), &se) {
		t.Fatalf("ReplyError(%v) is not a *ServerError", v)
	}
	if se.Message != "ERR unknown command 'FOO'" {
		t.Errorf("Message = %q", se.Message)
	}
}

func TestClient_Do_ProtocolError(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		readN(conn, len("*1\r\n$4\r\nPING\r\n"))
		conn.Write([]byte("garbage\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	_, err := c.Do(context.Background(), "PING")
	if !errors.Is(err, ErrProtocol) {
		t.Errorf("Do() error = %v, want ErrProtocol", err)
	}
	if c.conn != nil {
		t.Error("connection should be dropped after a protocol error")
	}
}

func TestClient_Do_ServerCloses(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		readN(conn, len("*1\r\n$4\r\nPING\r\n"))
	})

	c := NewClient(addr, time.Second)
	defer c.Close()

	if _, err := c.Do(context.Background(), "PING"); err == nil {
		t.Error("Do() should fail when the server closes without replying")
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		time.Sleep(500 * time.Millisecond)
	})

	c := NewClient(addr, 50*time.Millisecond)
	defer c.Close()

	start := time.Now()
	if _, err := c.Do(context.Background(), "PING"); err == nil {
		t.Error("Do() should time out")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Do() took %v, want timeout near 50ms", elapsed)
	}
}

func TestClient_Do_Empty(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	if _, err := c.Do(context.Background()); err == nil {
		t.Error("Do() with no args should fail")
	}
}
