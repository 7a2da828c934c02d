// Package output renders RESP replies for respkv-cli.
//
// Formats:
//
//   - text: redis-cli style, e.g. "OK", "(integer) 3", "(nil)"
//   - json: replies converted to plain JSON values
//   - yaml: the same tree as json, encoded as YAML
//   - raw: the reply bytes exactly as sent on the wire
package output
