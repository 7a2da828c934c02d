package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/config"
	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/pkg/resp"
)

const sessionKey = "session"

// Session is the per-invocation state shared by all commands.
type Session struct {
	Client    *connection.Client
	Formatter output.Formatter
	Out       io.Writer
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "Command-line client for the respkv server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			RawCommand(),
			ReplCommand(),
		},
		Before: openSession,
		After:  closeSession,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI config file",
			Value: config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address or saved connection name",
			EnvVars: []string{"RESPKV_SERVER"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml, raw",
		},
	}
}

func openSession(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	c.App.Metadata[sessionKey] = &Session{
		Client:    connection.NewClient(cfg.Resolve(cfg.Server), cfg.Timeout),
		Formatter: output.NewFormatter(format),
		Out:       out,
	}
	return nil
}

func closeSession(c *cli.Context) error {
	if s := GetSession(c); s != nil {
		return s.Client.Close()
	}
	return nil
}

// GetSession retrieves the session from context.
func GetSession(c *cli.Context) *Session {
	if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
		return s
	}
	return nil
}

// send issues one request and prints the reply. An error reply is
// returned as a *connection.ServerError after it has been printed.
func send(c *cli.Context, args ...string) error {
	s := GetSession(c)
	if s == nil {
		return fmt.Errorf("session not initialized")
	}

	v, err := s.Client.Do(c.Context, args...)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return printReply(s, v)
}

func printReply(s *Session, v resp.Value) error {
	if err := s.Formatter.Format(s.Out, v); err != nil {
		return err
	}
	return connection.ReplyError(v)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
