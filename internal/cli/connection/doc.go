// Package connection provides the blocking RESP client used by respkv-cli.
//
// A Client owns one TCP connection. Each Do call writes a request as an
// array of bulk strings and reads until exactly one reply has been decoded;
// bytes past that reply are kept for the next call.
package connection
