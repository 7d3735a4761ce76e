// Package api implements the HTTP surface of the homework tracker.
//
// Mutations are submitted to the task coordinator and acknowledged with
// 202 Accepted; reads are served from the MemoryPresenter, which retains
// the latest view the task core presented.
package api
