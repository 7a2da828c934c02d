// Package config holds respkv-cli preferences stored in ~/.respkv/cli.yaml.
//
// The file names a default server, request timeout and output format, and
// may save named connections so "--server prod" resolves to an address.
// RESPKV_CLI_* environment variables override the file; command-line flags
// override both.
package config
