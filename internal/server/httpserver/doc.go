// Package httpserver provides the admin HTTP endpoint of respkv-server.
//
// Routes:
//
//   - GET /metrics: Prometheus exposition
//   - GET /health: liveness, always 200 while the process serves HTTP
//   - GET /ready: 200 once the RESP listener is accepting, 503 otherwise
//   - GET /version: build information as JSON
//
// Every route runs behind RequestID, Recover and AccessLog middleware.
package httpserver
