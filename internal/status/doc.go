// Package status maintains the memoized mapping from homework code to
// derived status tag. The cache is owned by the coordinator goroutine and
// is allowed to go stale between mutations, bounded by the periodic full
// recompute; a miss is never an error, it degrades to recomputation.
package status
