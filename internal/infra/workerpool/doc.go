// Package workerpool runs closures on a fixed set of goroutines.
//
// Jobs wait in an unbounded FIFO queue. Close stops intake, lets queued jobs
// finish, and joins every worker. A job that panics is logged and does not
// take its worker down.
package workerpool
