// Package worker runs task store operations on a fixed set of goroutines,
// each owning one exclusive database connection for its whole lifetime.
//
// Callers submit a typed Request and receive a Future. Every worker has its
// own unbounded mailbox, so submission never blocks; requests are spread
// across workers round-robin. A worker executes one request at a time on its
// connection and resolves the request's Future exactly once. Store errors
// never cross the Future: they are logged by the worker and reported as
// ErrOperationFailed.
//
// Once submitted, a request runs to completion. Cancelling the submitting
// context, or giving up on Await, does not reach the worker.
package worker
