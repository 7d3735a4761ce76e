package pipeline

import (
	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/store"
)

type msgKind int

const (
	// msgBatch carries one slice of item records.
	msgBatch msgKind = iota
	// msgComplete carries the total count and any extracted settings.
	msgComplete
	// msgError short-circuits the remaining stages.
	msgError
	// msgEnd is the terminal marker that ends every stage. It always
	// follows either msgComplete or msgError.
	msgEnd
)

// message is the unit flowing between pipeline stages.
type message struct {
	kind     msgKind
	batch    []domain.Homework
	seq      int // 1-based batch sequence position
	batches  int // total batch count
	total    int // total item count in the document
	settings store.Settings
	err      error
}
