package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/hwdate"
	"github.com/studyhall/hwtrack/internal/pipeline"
	"github.com/studyhall/hwtrack/internal/present"
	"github.com/studyhall/hwtrack/internal/status"
	"github.com/studyhall/hwtrack/internal/store"
)

// Config holds coordinator tuning.
type Config struct {
	// TickInterval is the scheduler poll period. Defaults to 50ms.
	TickInterval time.Duration

	// QueueSize bounds the pending-task queue. Defaults to 256.
	QueueSize int

	// DateCacheSize bounds the date-parse memo table.
	DateCacheSize int

	// Pipeline tunes the bulk load.
	Pipeline pipeline.Config
}

// DefaultConfig returns a Config with the standard tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval:  50 * time.Millisecond,
		QueueSize:     256,
		DateCacheSize: hwdate.DefaultCacheSize,
		Pipeline:      pipeline.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	return c
}

// Coordinator owns the shared homework collection and the status cache,
// and guarantees at most one task is logically in flight at any instant.
// All state below the mutex comment is touched only on the run goroutine;
// workers hand results back through the callbacks channel.
type Coordinator struct {
	cfg       Config
	docs      store.DocumentStore
	presenter present.Presenter
	parser    *hwdate.Parser
	cache     *status.Cache
	logger    *slog.Logger
	validate  *validator.Validate
	now       func() time.Time

	queue     *Queue
	callbacks chan func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Run-goroutine state. Never read or written elsewhere.
	homeworks  []domain.Homework
	settings   store.Settings
	dataLoaded bool
	active     *Task

	// mu guards the cross-goroutine status readout only.
	mu          sync.Mutex
	currentKind *Kind
}

// New creates a Coordinator. Zero config fields fall back to defaults.
func New(
	docs store.DocumentStore,
	presenter present.Presenter,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	cfg = cfg.withDefaults()
	log := logger.With(slog.String("component", "coordinator"))
	ctx, cancel := context.WithCancel(context.Background())

	parser := hwdate.NewParser(cfg.DateCacheSize)

	return &Coordinator{
		cfg:       cfg,
		docs:      docs,
		presenter: presenter,
		parser:    parser,
		cache:     status.NewCache(parser),
		logger:    log,
		validate:  validator.New(),
		now:       time.Now,
		queue:     NewQueue(cfg.QueueSize, log),
		callbacks: make(chan func(), cfg.QueueSize),
		settings:  store.Settings{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetNowFunc overrides the time source. Tests use this to pin "today".
func (c *Coordinator) SetNowFunc(now func() time.Time) {
	c.now = now
}

// Start launches the run loop.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.run()
	c.logger.Info("coordinator started",
		"tick_interval", c.cfg.TickInterval,
		"queue_size", c.cfg.QueueSize)
}

// Stop closes the queue and shuts the run loop down. Queued tasks that
// have not been dispatched are discarded; there is no durability
// guarantee for in-flight or queued tasks.
func (c *Coordinator) Stop() {
	c.queue.Close()
	c.cancel()
	c.wg.Wait()
	c.logger.Info("coordinator stopped")
}

// Submit enqueues a task. It is safe from any goroutine and never blocks;
// a full or closed queue is reported as an error.
func (c *Coordinator) Submit(kind Kind, params Params) error {
	t, err := newTask(kind, params, c.now())
	if err != nil {
		return err
	}
	return c.queue.Enqueue(t)
}

// QueueDepth returns the number of tasks waiting for dispatch.
func (c *Coordinator) QueueDepth() int {
	return c.queue.Depth()
}

// CurrentTaskKind returns the kind of the task in flight, or nil when the
// coordinator is idle.
func (c *Coordinator) CurrentTaskKind() *Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentKind == nil {
		return nil
	}
	k := *c.currentKind
	return &k
}

// Items returns a copy of the live collection, marshaled through the run
// goroutine so it never races a mutating handler.
func (c *Coordinator) Items() []domain.Homework {
	out := make(chan []domain.Homework, 1)
	c.post(func() {
		out <- append([]domain.Homework(nil), c.homeworks...)
	})
	select {
	case items := <-out:
		return items
	case <-c.ctx.Done():
		return nil
	}
}

// TagFor returns the cached tag for code, healing a miss from the live
// collection the way refresh does.
func (c *Coordinator) TagFor(code string) domain.Tag {
	out := make(chan domain.Tag, 1)
	c.post(func() {
		out <- c.cache.Get(code, c.findByCode, c.now(), c.settings.RemindDays())
	})
	select {
	case tag := <-out:
		return tag
	case <-c.ctx.Done():
		return domain.TagPending
	}
}

// run is the coordinator loop: a fixed-interval tick that dispatches at
// most one task, interleaved with draining worker completions. The loop
// itself never blocks on I/O.
func (c *Coordinator) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return

		case fn := <-c.callbacks:
			fn()

		case <-ticker.C:
			if c.active != nil {
				continue // busy: stay busy until the handler finishes
			}
			select {
			case t, ok := <-c.queue.Chan():
				if !ok {
					return
				}
				c.dispatch(t)
			default:
				// idle and nothing queued
			}
		}
	}
}

// post marshals fn onto the run goroutine. Workers use this to hand
// completions back instead of mutating shared state directly.
func (c *Coordinator) post(fn func()) {
	select {
	case c.callbacks <- fn:
	case <-c.ctx.Done():
	}
}

// dispatch runs one task's handler on the run goroutine. Synchronous
// handlers call finish before returning; handlers that spawn workers
// leave the coordinator busy until the worker's completion callback runs.
func (c *Coordinator) dispatch(t Task) {
	c.active = &t
	c.setCurrentKind(&t.Kind)

	c.logger.Debug("dispatching task",
		"task_id", t.ID,
		"task_kind", t.Kind,
		"queued_for", c.now().Sub(t.SubmittedAt))

	switch t.Kind {
	case KindLoad:
		c.executeLoad(t)
	case KindSave:
		c.executeSave(t)
	case KindAdd:
		c.executeAdd(t, t.Params.(AddParams))
	case KindRefresh:
		params := RefreshParams{}
		if t.Params != nil {
			params = t.Params.(RefreshParams)
		}
		c.executeRefresh(t, params)
	case KindUpdateDerivedViews:
		c.executeUpdateDerivedViews(t)
	case KindQuery:
		c.executeQuery(t, t.Params.(QueryParams))
	case KindDelete:
		c.executeDelete(t, t.Params.(DeleteParams))
	case KindClearAll:
		c.executeClearAll(t)
	case KindMarkCompleted:
		c.executeMarkCompleted(t, t.Params.(MarkCompletedParams))
	default:
		c.finish(t, nil)
	}
}

// finish transitions the coordinator back to idle. Failures are surfaced
// to the user and logged, but never retried: the queue keeps draining
// regardless of a prior task's outcome. Must run on the run goroutine.
func (c *Coordinator) finish(t Task, err error) {
	if err != nil {
		c.logger.Error("task failed",
			"task_id", t.ID,
			"task_kind", t.Kind,
			"error", err)
		c.presenter.NotifyUser(err.Error(), present.SeverityError)
	} else {
		c.logger.Debug("task completed", "task_id", t.ID, "task_kind", t.Kind)
	}

	c.active = nil
	c.setCurrentKind(nil)
}

func (c *Coordinator) setCurrentKind(k *Kind) {
	c.mu.Lock()
	c.currentKind = k
	c.mu.Unlock()
}

// cascade enqueues the follow-up tasks a mutating handler fires. A full
// queue is logged rather than escalated; the mutation itself has already
// been applied.
func (c *Coordinator) cascade(kinds ...Kind) {
	for _, kind := range kinds {
		var params Params
		if err := c.Submit(kind, params); err != nil {
			c.logger.Warn("cascade submission failed", "task_kind", kind, "error", err)
		}
	}
}

func (c *Coordinator) findByCode(code string) (domain.Homework, bool) {
	for _, hw := range c.homeworks {
		if hw.Code == code {
			return hw, true
		}
	}
	return domain.Homework{}, false
}
