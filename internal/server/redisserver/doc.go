// Package redisserver serves the RESP protocol over TCP.
//
// A single reactor goroutine owns the listening socket and every client
// connection. It waits on a readiness poller (epoll on Linux, kqueue on the
// BSDs and macOS), drains readable sockets into per-connection buffers, and
// flushes write buffers when the socket can take more. It never blocks on
// socket I/O.
//
// Request execution is handed to a Dispatcher, by default a worker pool.
// Each connection has at most one job in flight; the job works on a copy of
// the buffered bytes and posts its reply back through a completion queue,
// waking the reactor with a self-pipe. Replies therefore keep request order
// per connection.
//
// The package builds on Unix platforms only.
package redisserver
