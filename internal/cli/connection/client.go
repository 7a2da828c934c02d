package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request when the caller's context
// carries no deadline.
const DefaultTimeout = 5 * time.Second

const readChunkSize = 4096

// ErrProtocol is returned when the server sends bytes that are not a RESP
// reply.
var ErrProtocol = errors.New("connection: protocol error")

// ServerError is an error reply ("-...") returned by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ReplyError returns a *ServerError when v is an error reply, nil otherwise.
func ReplyError(v resp.Value) error {
	if v.Kind == resp.KindError {
		return &ServerError{Message: v.Str}
	}
	return nil
}

// Client is a single-connection RESP client. It is not safe for concurrent
// use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
}

// NewClient creates a client for addr. A non-positive timeout selects
// DefaultTimeout.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	c.conn = conn
	c.buf = c.buf[:0]
	return nil
}

// Close closes the connection. It is safe to call on an unconnected client.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Do sends args as one request and returns the decoded reply. Error
// replies are returned as values; use ReplyError to inspect them.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("connection: empty request")
	}

	elems := make([]resp.Value, len(args))
	for i, a := range args {
		elems[i] = resp.BulkText(a)
	}
	return c.DoValue(ctx, resp.Array(elems...))
}

// DoValue sends an arbitrary value as the request.
func (c *Client) DoValue(ctx context.Context, req resp.Value) (resp.Value, error) {
	if err := c.Connect(ctx); err != nil {
		return resp.Value{}, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, c.fail(err)
	}

	if _, err := c.conn.Write(resp.Serialize(req)); err != nil {
		return resp.Value{}, c.fail(fmt.Errorf("write: %w", err))
	}

	v, err := c.readReply()
	if err != nil {
		return resp.Value{}, c.fail(err)
	}
	return v, nil
}

func (c *Client) readReply() (resp.Value, error) {
	for {
		if len(c.buf) > 0 {
			v, n, err := resp.ParsePrefix(c.buf)
			switch {
			case err == nil && n > 0:
				c.buf = append(c.buf[:0], c.buf[n:]...)
				return v, nil
			case err == nil:
				return resp.Value{}, fmt.Errorf("%w: unrecognized reply prefix %q", ErrProtocol, c.buf[0])
			case !errors.Is(err, resp.ErrUnexpectedEOF):
				return resp.Value{}, fmt.Errorf("%w: %w", ErrProtocol, err)
			}
		}

		chunk := make([]byte, readChunkSize)
		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil && n == 0 {
			return resp.Value{}, fmt.Errorf("read: %w", err)
		}
	}
}

// fail drops the connection so the next call redials with a clean buffer.
func (c *Client) fail(err error) error {
	_ = c.Close()
	c.buf = c.buf[:0]
	return err
}
