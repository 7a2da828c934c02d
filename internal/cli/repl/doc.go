// Package repl provides the interactive mode of respkv-cli.
//
// Each input line is split into arguments (double and single quotes group
// words, backslash escapes inside double quotes), sent to the server as one
// request and the reply is printed with the configured formatter. The
// built-ins are help, history, exit and quit.
package repl
