// Package resp implements the RESP wire codec used by respkv.
//
// The codec is a pair of pure functions with no I/O and no retained state:
//
//   - Parse / ParsePrefix: bytes -> Value
//   - Serialize / AppendValue: Value -> bytes
//
// Supported types, selected by the leading byte:
//
//	'+' simple string    '-' error      ':' integer
//	'$' bulk string      '*' array      '#' boolean
//	'_' null             'P' legacy inline "PING\r\n"
//
// Nil bulk strings ("$-1\r\n") and nil arrays ("*-1\r\n") are first-class
// values, distinct from the empty bulk string and the empty array.
//
// Parse decodes exactly one top-level value per call. Callers that want to
// serve pipelined requests use ParsePrefix, which reports how many bytes the
// value occupied, and re-invoke it on the remainder.
package resp
