// Package command provides the respkv-cli command definitions.
//
// Commands are built with urfave/cli/v2:
//
//   - root.go: App, global flags, session setup
//   - keys.go: ping, echo, get, set, raw
//   - repl.go: interactive mode
//
// Each command sends one request through the shared connection and prints
// the reply with the selected output format. An error reply makes the
// command fail.
package command
