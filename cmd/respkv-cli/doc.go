// Package main provides the entry point for respkv-cli.
//
// respkv-cli sends single commands to a respkv server or opens an
// interactive session:
//
//	respkv-cli ping
//	respkv-cli --server 10.0.0.5:6379 set session:42 alice --ex 60
//	respkv-cli -o json get session:42
//	respkv-cli repl
package main
