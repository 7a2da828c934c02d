package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/repl"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	s := GetSession(c)
	if s == nil {
		return fmt.Errorf("session not initialized")
	}

	history := repl.NewHistory()
	persist := !c.Bool("no-history")
	if persist {
		if err := history.Load(); err != nil {
			PrintError("load history: %v", err)
		}
	}

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	r := repl.New(s.Client, s.Formatter,
		repl.WithIO(in, s.Out),
		repl.WithHistory(history),
		repl.WithPrompt(s.Client.Addr()+"> "),
	)
	if err := r.Run(c.Context); err != nil {
		return err
	}

	if persist {
		return history.Save()
	}
	return nil
}
