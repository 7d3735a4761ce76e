package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/store"
)

// wrappedDocument is the current on-disk shape.
type wrappedDocument struct {
	Homeworks []domain.Homework `json:"homeworks"`
	Settings  store.Settings    `json:"settings,omitempty"`
}

// Store reads and writes the homework document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store for the document at path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "jsonfile_store")),
	}
}

// Read decodes the document. A file whose top-level value is an object is
// decoded as the wrapped shape; an array is decoded as the legacy bare
// list. Returns store.ErrDocumentMissing when the file does not exist.
func (s *Store) Read(ctx context.Context) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrDocumentMissing, s.path)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", store.ErrDocumentMalformed)
	}

	switch trimmed[0] {
	case '{':
		var doc wrappedDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrDocumentMalformed, err)
		}
		s.logger.Debug("document read",
			"shape", "wrapped",
			"count", len(doc.Homeworks),
			"has_settings", doc.Settings != nil)
		return &store.Document{Homeworks: doc.Homeworks, Settings: doc.Settings}, nil

	case '[':
		var items []domain.Homework
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrDocumentMalformed, err)
		}
		s.logger.Debug("document read", "shape", "legacy", "count", len(items))
		return &store.Document{Homeworks: items}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected top-level value", store.ErrDocumentMalformed)
	}
}

// Write persists the document in the wrapped shape, pretty-printed to stay
// diffable and hand-editable like the original format.
func (s *Store) Write(ctx context.Context, doc *store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := wrappedDocument{Homeworks: doc.Homeworks, Settings: doc.Settings}
	if out.Homeworks == nil {
		out.Homeworks = []domain.Homework{}
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	s.logger.Debug("document written", "count", len(out.Homeworks))
	return nil
}

// Interface guard.
var _ store.DocumentStore = (*Store)(nil)
