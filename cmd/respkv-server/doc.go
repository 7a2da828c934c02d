// Package main provides the entry point for respkv-server.
//
// respkv-server is a minimal RESP key-value server. It serves PING, ECHO,
// GET and SET (with EX/PX expiry) from an in-memory store, and optionally
// exposes /metrics, /health, /ready and /version over HTTP.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /etc/respkv/config.yaml
//	respkv-server --addr 0.0.0.0:6379 --workers 8 --metrics-addr :9121
//
// Configuration is layered: defaults, then the YAML file, then RESPKV_*
// environment variables, then flags. Variables from --env-file (default
// .env) are exported first but never replace ones already set. Editing the config file or sending
// SIGHUP reloads the log level.
package main
