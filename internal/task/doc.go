// Package task implements the serialized task execution core: a bounded
// FIFO queue of work requests, a tick-driven coordinator that keeps at
// most one task in flight, and one handler per task kind. Handlers may
// offload blocking I/O to worker goroutines; completions are marshaled
// back onto the coordinator goroutine, so every mutation of the shared
// collection and status cache is single-threaded by construction.
package task
