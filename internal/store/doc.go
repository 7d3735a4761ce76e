// Package store defines the persisted document model and the interface
// for reading and writing it. The concrete JSON file implementation lives
// in internal/platform/jsonfile.
package store
