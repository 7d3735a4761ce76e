// Package present declares the collaborator interfaces the task core calls
// into to surface results. Implementations live outside the core; the HTTP
// layer provides one in internal/api.
package present
