// Package jsonfile implements store.DocumentStore on top of a single JSON
// file, supporting both the current wrapped document shape and the legacy
// bare-array shape for backward compatibility.
package jsonfile
