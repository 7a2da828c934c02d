package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"PING", "ECHO", "GET", "SET", "CONFIG", "COMMAND",
			"help", "history", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix, ignoring case. An
// empty prefix matches everything.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), strings.ToLower(prefix)) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
