// Package command turns parsed RESP requests into commands and runs them.
//
// Extract is pure translation: it validates the shape, arity and argument
// types of a request array and returns one of the Command variants. Executor
// runs a command against a Store and produces the reply value; Handle ties
// the codec, Extract and Execute together for a buffer of raw request bytes.
//
// Supported commands:
//   - PING [message]
//   - ECHO message
//   - GET key
//   - SET key value [EX seconds | PX milliseconds]
//   - CONFIG ..., COMMAND ... (placeholders, reply with an empty array)
package command
