package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() != n {
		return fmt.Errorf("%s requires exactly %d argument(s): %s", c.Command.Name, n, usage)
	}
	return nil
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check the server is alive",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("ping takes at most 1 argument")
			}
			return send(c, append([]string{"PING"}, c.Args().Slice()...)...)
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "MESSAGE"); err != nil {
				return err
			}
			return send(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value stored at a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "KEY"); err != nil {
				return err
			}
			return send(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value at a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "ex",
				Usage: "Expire after the given number of seconds",
			},
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "Expire after the given number of milliseconds",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if err := requireArgs(c, 2, "KEY VALUE"); err != nil {
		return err
	}
	if c.IsSet("ex") && c.IsSet("px") {
		return fmt.Errorf("--ex and --px are mutually exclusive")
	}

	args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
	switch {
	case c.IsSet("ex"):
		args = append(args, "EX", strconv.FormatUint(c.Uint64("ex"), 10))
	case c.IsSet("px"):
		args = append(args, "PX", strconv.FormatUint(c.Uint64("px"), 10))
	}
	return send(c, args...)
}

// RawCommand returns the raw command, which sends its arguments verbatim.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send an arbitrary command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("raw requires a command name")
			}
			return send(c, c.Args().Slice()...)
		},
	}
}
