package store

import (
	"context"

	"github.com/spf13/cast"

	"github.com/studyhall/hwtrack/internal/domain"
)

// Settings keys with typed accessors. The map deliberately stays open:
// presentation-layer scalars (fonts, themes, window geometry) round-trip
// through load and save untouched.
const (
	KeyRemindDays = "remind_days"
	KeyChartDays  = "chart_days"
)

// Defaults applied when a settings key is absent.
const (
	DefaultRemindDays = 3
	DefaultChartDays  = 5
)

// Settings is the configuration scalar map carried inside the current
// document shape.
type Settings map[string]any

// RemindDays returns the remind-window setting, defaulting to
// DefaultRemindDays when absent or not a number.
func (s Settings) RemindDays() int {
	return s.intOr(KeyRemindDays, DefaultRemindDays)
}

// ChartDays returns the trailing-window length for per-day aggregates,
// defaulting to DefaultChartDays when absent or not a number.
func (s Settings) ChartDays() int {
	return s.intOr(KeyChartDays, DefaultChartDays)
}

func (s Settings) intOr(key string, fallback int) int {
	if s == nil {
		return fallback
	}
	v, ok := s[key]
	if !ok {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Clone returns a shallow copy. Values are scalars, so a shallow copy is
// an independent map.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge overlays other onto s, key by key.
func (s Settings) Merge(other Settings) {
	for k, v := range other {
		s[k] = v
	}
}

// Document is the in-memory form of the persisted document. Settings is
// nil when the document was in the legacy bare-array shape.
type Document struct {
	Homeworks []domain.Homework
	Settings  Settings
}

// DocumentStore reads and writes the persisted homework document. The
// document is single-writer: only the save handler calls Write.
type DocumentStore interface {
	// Read decodes the document, accepting both the current wrapped shape
	// and the legacy bare array. It returns ErrDocumentMissing when no
	// document exists yet.
	Read(ctx context.Context) (*Document, error)

	// Write persists the document in the current wrapped shape.
	Write(ctx context.Context, doc *Document) error
}
