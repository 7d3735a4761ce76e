package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/store"
)

// Config holds the pipeline's tuning knobs.
type Config struct {
	// BatchSize is the number of items per batch. Defaults to 100.
	BatchSize int

	// ChannelCapacity bounds the channels joining the stages; this is
	// what gives the pipeline backpressure. Defaults to 50.
	ChannelCapacity int

	// EagerBatches is how many leading batches are surfaced as partial
	// results so large loads show progress. Defaults to 3.
	EagerBatches int
}

// DefaultConfig returns a Config with the standard tuning.
func DefaultConfig() Config {
	return Config{
		BatchSize:       100,
		ChannelCapacity: 50,
		EagerBatches:    3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.ChannelCapacity <= 0 {
		c.ChannelCapacity = def.ChannelCapacity
	}
	if c.EagerBatches <= 0 {
		c.EagerBatches = def.EagerBatches
	}
	return c
}

// Result is the outcome of a successful load. Settings is nil when the
// document was in the legacy shape.
type Result struct {
	Homeworks []domain.Homework
	Settings  store.Settings
	Total     int
}

// Callbacks receive the pipeline's output. They are invoked from pipeline
// goroutines; the caller is responsible for marshaling back onto its own
// execution context. Exactly one of OnComplete or OnError fires per run.
type Callbacks struct {
	// OnPartial delivers one of the leading batches together with the
	// load progress fraction in (0, 1].
	OnPartial func(batch []domain.Homework, progress float64)

	// OnComplete delivers the fully accumulated collection.
	OnComplete func(res Result)

	// OnError reports a failed load. Any stage's error short-circuits
	// the remaining stages.
	OnError func(err error)
}

// Loader runs the three-stage bulk load against a document store.
type Loader struct {
	store  store.DocumentStore
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a Loader. Zero config fields fall back to defaults.
func NewLoader(st store.DocumentStore, cfg Config, logger *slog.Logger) *Loader {
	return &Loader{
		store:  st,
		cfg:    cfg.withDefaults(),
		logger: logger.With(slog.String("component", "load_pipeline")),
	}
}

// Run executes one load and blocks until all three stages finish. Callers
// that must not block run it on its own goroutine.
func (l *Loader) Run(ctx context.Context, cb Callbacks) {
	readerOut := make(chan message, l.cfg.ChannelCapacity)
	normalizerOut := make(chan message, l.cfg.ChannelCapacity)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		l.readStage(ctx, readerOut)
	}()
	go func() {
		defer wg.Done()
		l.normalizeStage(ctx, readerOut, normalizerOut)
	}()
	go func() {
		defer wg.Done()
		l.sinkStage(ctx, normalizerOut, cb)
	}()

	wg.Wait()
}

// send delivers m unless the context is cancelled first.
func send(ctx context.Context, out chan<- message, m message) bool {
	select {
	case out <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

// readStage opens the document, slices it into batches and emits them in
// order, followed by a complete message and the terminal marker.
func (l *Loader) readStage(ctx context.Context, out chan<- message) {
	defer close(out)

	doc, err := l.store.Read(ctx)
	if err != nil {
		l.logger.Warn("document read failed", "error", err)
		send(ctx, out, message{kind: msgError, err: err})
		send(ctx, out, message{kind: msgEnd})
		return
	}

	total := len(doc.Homeworks)
	batches := 0
	if total > 0 {
		batches = (total + l.cfg.BatchSize - 1) / l.cfg.BatchSize
	}

	l.logger.Debug("document sliced", "total", total, "batches", batches)

	for i := 0; i < total; i += l.cfg.BatchSize {
		end := i + l.cfg.BatchSize
		if end > total {
			end = total
		}
		ok := send(ctx, out, message{
			kind:    msgBatch,
			batch:   doc.Homeworks[i:end],
			seq:     i/l.cfg.BatchSize + 1,
			batches: batches,
			total:   total,
		})
		if !ok {
			return
		}
	}

	send(ctx, out, message{kind: msgComplete, total: total, settings: doc.Settings})
	send(ctx, out, message{kind: msgEnd})
}

// normalizeStage upgrades legacy records (missing status becomes pending)
// and passes control messages through unchanged.
func (l *Loader) normalizeStage(ctx context.Context, in <-chan message, out chan<- message) {
	defer close(out)

	for m := range in {
		switch m.kind {
		case msgBatch:
			normalized := make([]domain.Homework, len(m.batch))
			for i, hw := range m.batch {
				if hw.Status == "" {
					hw.Status = domain.StatusPending
				}
				normalized[i] = hw
			}
			m.batch = normalized
			if !send(ctx, out, m) {
				return
			}

		case msgError:
			send(ctx, out, m)
			send(ctx, out, message{kind: msgEnd})
			return

		case msgEnd:
			send(ctx, out, m)
			return

		default:
			if !send(ctx, out, m) {
				return
			}
		}
	}
}

// sinkStage accumulates batches into the final collection, surfacing the
// leading batches eagerly, and fires exactly one terminal callback.
func (l *Loader) sinkStage(ctx context.Context, in <-chan message, cb Callbacks) {
	var all []domain.Homework
	received := 0

	for m := range in {
		switch m.kind {
		case msgBatch:
			all = append(all, m.batch...)
			received++

			if received <= l.cfg.EagerBatches && cb.OnPartial != nil {
				progress := 1.0
				if m.total > 0 {
					progress = float64(len(all)) / float64(m.total)
				}
				cb.OnPartial(m.batch, progress)
			}
			l.logger.Debug("batch accumulated",
				"seq", m.seq,
				"batches", m.batches,
				"accumulated", len(all))

		case msgComplete:
			l.logger.Debug("load complete", "total", m.total)
			if cb.OnComplete != nil {
				cb.OnComplete(Result{Homeworks: all, Settings: m.settings, Total: m.total})
			}
			return

		case msgError:
			if cb.OnError != nil {
				cb.OnError(m.err)
			}
			return

		case msgEnd:
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}
