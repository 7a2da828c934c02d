package command

import "github.com/yndnr/respkv/pkg/resp"

// Command is one of Ping, Echo, Get, Set, Config or Introspect.
// A command owns its arguments and is never modified after Extract.
type Command interface {
	// Name returns the upper-case command name.
	Name() string
	command()
}

// Ping replies with Reply: PONG, or the message argument as a bulk string.
type Ping struct {
	Reply resp.Value
}

// Echo replies with its argument as a bulk string.
type Echo struct {
	Reply resp.Value
}

// Get reads Key from the store.
type Get struct {
	Key resp.Value
}

// Set writes Value under Key. ExpiryMS is nil when no EX/PX option was given.
type Set struct {
	Key      resp.Value
	Value    resp.Value
	ExpiryMS *uint64
}

// Config is the CONFIG placeholder.
type Config struct{}

// Introspect is the COMMAND placeholder.
type Introspect struct{}

func (Ping) Name() string       { return "PING" }
func (Echo) Name() string       { return "ECHO" }
func (Get) Name() string        { return "GET" }
func (Set) Name() string        { return "SET" }
func (Config) Name() string     { return "CONFIG" }
func (Introspect) Name() string { return "COMMAND" }

func (Ping) command()       {}
func (Echo) command()       {}
func (Get) command()        {}
func (Set) command()        {}
func (Config) command()     {}
func (Introspect) command() {}
