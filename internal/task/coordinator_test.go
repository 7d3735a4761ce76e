package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/present"
	"github.com/studyhall/hwtrack/internal/store"
)

var coordNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// notice records one NotifyUser call.
type notice struct {
	message  string
	severity present.Severity
}

// recordingPresenter captures presenter calls; the core invokes it from
// multiple goroutines.
type recordingPresenter struct {
	mu         sync.Mutex
	notices    []notice
	lists      [][]domain.Homework
	stats      []present.Stats
	progresses []float64
	aggs       []present.Aggregates
}

func (p *recordingPresenter) NotifyUser(message string, severity present.Severity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice{message: message, severity: severity})
}

func (p *recordingPresenter) PresentList(items []domain.Homework, stats present.Stats, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, append([]domain.Homework(nil), items...))
	p.stats = append(p.stats, stats)
	p.progresses = append(p.progresses, progress)
}

func (p *recordingPresenter) PresentAggregates(agg present.Aggregates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aggs = append(p.aggs, agg)
}

func (p *recordingPresenter) lastList() ([]domain.Homework, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.lists) - 1; i >= 0; i-- {
		if p.progresses[i] >= present.ProgressComplete {
			return p.lists[i], true
		}
	}
	return nil, false
}

func (p *recordingPresenter) lastStats() (present.Stats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.stats) - 1; i >= 0; i-- {
		if p.progresses[i] >= present.ProgressComplete {
			return p.stats[i], true
		}
	}
	return present.Stats{}, false
}

func (p *recordingPresenter) lastAggregates() (present.Aggregates, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.aggs) == 0 {
		return present.Aggregates{}, false
	}
	return p.aggs[len(p.aggs)-1], true
}

func (p *recordingPresenter) errorNotices() []notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notice
	for _, n := range p.notices {
		if n.severity == present.SeverityError {
			out = append(out, n)
		}
	}
	return out
}

// memStore is an in-memory DocumentStore instrumented to detect
// overlapping writes.
type memStore struct {
	mu          sync.Mutex
	doc         *store.Document
	writeDelay  time.Duration
	writes      int
	inflight    int32
	maxInflight int32
}

func (s *memStore) Read(ctx context.Context) (*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("%w: memory store", store.ErrDocumentMissing)
	}
	return &store.Document{
		Homeworks: append([]domain.Homework(nil), s.doc.Homeworks...),
		Settings:  s.doc.Settings.Clone(),
	}, nil
}

func (s *memStore) Write(ctx context.Context, doc *store.Document) error {
	cur := atomic.AddInt32(&s.inflight, 1)
	defer atomic.AddInt32(&s.inflight, -1)
	for {
		max := atomic.LoadInt32(&s.maxInflight)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxInflight, max, cur) {
			break
		}
	}

	if s.writeDelay > 0 {
		time.Sleep(s.writeDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &store.Document{
		Homeworks: append([]domain.Homework(nil), doc.Homeworks...),
		Settings:  doc.Settings.Clone(),
	}
	s.writes++
	return nil
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// testClock is a settable time source safe to adjust while the
// coordinator runs.
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.cur = t
	c.mu.Unlock()
}

func newTestCoordinator(t *testing.T, st store.DocumentStore) (*Coordinator, *recordingPresenter, *testClock) {
	t.Helper()

	presenter := &recordingPresenter{}
	clock := &testClock{cur: coordNow}

	c := New(st, presenter, Config{
		TickInterval: 2 * time.Millisecond,
		QueueSize:    64,
	}, setupTestLogger())
	c.SetNowFunc(clock.Now)
	c.Start()
	t.Cleanup(c.Stop)

	return c, presenter, clock
}

// waitIdle blocks until the queue is drained and no task is in flight,
// holding stable across a few samples so a finishing task's cascade is
// not mistaken for idleness.
func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	stable := 0
	for time.Now().Before(deadline) {
		if c.QueueDepth() == 0 && c.CurrentTaskKind() == nil {
			stable++
			if stable >= 3 {
				return
			}
		} else {
			stable = 0
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("coordinator did not go idle")
}

func mustAdd(t *testing.T, c *Coordinator, code, due string) {
	t.Helper()
	require.NoError(t, c.Submit(KindAdd, AddParams{
		Code:       code,
		Subject:    "Math",
		Content:    "exercise set",
		CreateDate: "01/03/2025",
		DueDate:    due,
	}))
}

func TestLoadFromDocument(t *testing.T) {
	st := &memStore{doc: &store.Document{
		Homeworks: []domain.Homework{
			{Code: "M1", Subject: "Math", Content: "a", CreateDate: "01/03/2025", DueDate: "09/03/2025", Status: domain.StatusPending},
			{Code: "M2", Subject: "Math", Content: "b", CreateDate: "01/03/2025", DueDate: "10/03/2025"},
			{Code: "M3", Subject: "Math", Content: "c", CreateDate: "01/03/2025", DueDate: "20/03/2025", Status: domain.StatusCompleted},
		},
		Settings: store.Settings{"remind_days": 3},
	}}
	c, presenter, _ := newTestCoordinator(t, st)

	require.NoError(t, c.Submit(KindLoad, nil))
	waitIdle(t, c)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, domain.StatusPending, items[1].Status, "legacy record upgraded")

	assert.Equal(t, domain.TagOverdue, c.TagFor("M1"))
	assert.Equal(t, domain.TagDueToday, c.TagFor("M2"))
	assert.Equal(t, domain.TagCompleted, c.TagFor("M3"))

	// The load cascade produced a full list and aggregates.
	list, ok := presenter.lastList()
	require.True(t, ok)
	assert.Len(t, list, 3)
	_, ok = presenter.lastAggregates()
	assert.True(t, ok)
	assert.Empty(t, presenter.errorNotices())
}

func TestLoadMissingDocumentFallsBackToEmpty(t *testing.T) {
	c, presenter, _ := newTestCoordinator(t, &memStore{})

	require.NoError(t, c.Submit(KindLoad, nil))
	waitIdle(t, c)

	assert.Empty(t, c.Items())
	require.NotEmpty(t, presenter.errorNotices(), "load failure is surfaced")
}

func TestAddAppendsAndCascades(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	require.NoError(t, c.Submit(KindAdd, AddParams{
		Code:       "M1",
		Subject:    "Math",
		Content:    "exercise set",
		CreateDate: "1/3/2025",
		DueDate:    "2/4/2025",
	}))
	waitIdle(t, c)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "01/03/2025", items[0].CreateDate, "dates are normalized on insert")
	assert.Equal(t, "02/04/2025", items[0].DueDate)
	assert.Equal(t, domain.StatusPending, items[0].Status)

	// The save cascade persisted the new record.
	assert.GreaterOrEqual(t, st.writeCount(), 1)
	list, ok := presenter.lastList()
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "M1", list[0].Code)
}

func TestAddDuplicateCodeRejected(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "M1", "01/04/2025")
	waitIdle(t, c)
	tagBefore := c.TagFor("M1")
	writesBefore := st.writeCount()

	mustAdd(t, c, "M1", "09/03/2025")
	waitIdle(t, c)

	// No mutation, no cascade, cache untouched.
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "01/04/2025", items[0].DueDate)
	assert.Equal(t, tagBefore, c.TagFor("M1"))
	assert.Equal(t, writesBefore, st.writeCount())
	require.NotEmpty(t, presenter.errorNotices())
	assert.Contains(t, presenter.errorNotices()[0].message, "already exists")
}

func TestAddMissingFieldsRejected(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	require.NoError(t, c.Submit(KindAdd, AddParams{
		Code:       "M1",
		Subject:    "",
		Content:    "exercise set",
		CreateDate: "01/03/2025",
		DueDate:    "01/04/2025",
	}))
	waitIdle(t, c)

	assert.Empty(t, c.Items())
	assert.Zero(t, st.writeCount())
	assert.NotEmpty(t, presenter.errorNotices())
}

func TestAddBadDateRejected(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "M1", "99/99/9999")
	waitIdle(t, c)

	assert.Empty(t, c.Items())
	require.NotEmpty(t, presenter.errorNotices())
	assert.Contains(t, presenter.errorNotices()[0].message, "invalid date")
}

func TestMarkCompletedCacheCoherence(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "M1", "01/04/2025")
	waitIdle(t, c)
	require.NotEqual(t, domain.TagCompleted, c.TagFor("M1"))

	require.NoError(t, c.Submit(KindMarkCompleted, MarkCompletedParams{Code: "M1"}))
	waitIdle(t, c)

	assert.Equal(t, domain.TagCompleted, c.TagFor("M1"))
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusCompleted, items[0].Status)
}

func TestMarkCompletedUnknownCode(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	require.NoError(t, c.Submit(KindMarkCompleted, MarkCompletedParams{Code: "NOPE"}))
	waitIdle(t, c)

	require.NotEmpty(t, presenter.errorNotices())
	assert.Zero(t, st.writeCount(), "failed mutation does not cascade a save")
}

func TestDeleteRemovesAndInvalidates(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "A", "01/04/2025")
	mustAdd(t, c, "B", "02/04/2025")
	waitIdle(t, c)

	require.NoError(t, c.Submit(KindDelete, DeleteParams{Codes: []string{"A"}}))
	waitIdle(t, c)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Code)
}

func TestClearAllEmptiesCollectionAndCache(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "A", "01/04/2025")
	mustAdd(t, c, "B", "02/04/2025")
	waitIdle(t, c)

	require.NoError(t, c.Submit(KindClearAll, nil))
	waitIdle(t, c)

	assert.Empty(t, c.Items())
	// A lookup for an old code recomputes to the default, it never panics.
	assert.Equal(t, domain.TagPending, c.TagFor("A"))
}

func TestQueryMatchesNormalizedDates(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "HIT", "01/02/2025")
	mustAdd(t, c, "MISS", "05/02/2025")
	waitIdle(t, c)

	// The differently padded query date matches the canonical stored one.
	require.NoError(t, c.Submit(KindQuery, QueryParams{Date: "1/2/2025", Field: QueryByDue}))
	waitIdle(t, c)

	list, ok := presenter.lastList()
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "HIT", list[0].Code)

	// Query leaves the collection untouched.
	assert.Len(t, c.Items(), 2)
}

func TestQueryByCreateDate(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "A", "01/04/2025") // created 01/03/2025
	waitIdle(t, c)

	require.NoError(t, c.Submit(KindQuery, QueryParams{Date: "01/03/2025", Field: QueryByCreate}))
	waitIdle(t, c)

	list, ok := presenter.lastList()
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestRefreshSortsMostUrgentFirst(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "M1", "01/01/2099")  // pending, weight 3
	mustAdd(t, c, "OVD", "01/03/2025") // overdue, weight 1
	mustAdd(t, c, "TOD", "10/03/2025") // due today, weight 0
	waitIdle(t, c)

	require.NoError(t, c.Submit(KindRefresh, nil))
	waitIdle(t, c)

	list, ok := presenter.lastList()
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, "TOD", list[0].Code)
	assert.Equal(t, "OVD", list[1].Code)
	assert.Equal(t, "M1", list[2].Code, "far-future pending item sorts after every urgent one")

	stats, ok := presenter.lastStats()
	require.True(t, ok)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.DueToday)
}

func TestRefreshRecomputeTracksDayRollover(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, clock := newTestCoordinator(t, st)

	mustAdd(t, c, "M1", "11/03/2025")
	waitIdle(t, c)
	require.Equal(t, domain.TagDueSoon, c.TagFor("M1"))

	// Two days pass; the periodic recompute flag refreshes every tag.
	clock.Set(coordNow.AddDate(0, 0, 2))
	require.NoError(t, c.Submit(KindRefresh, RefreshParams{Recompute: true}))
	waitIdle(t, c)

	assert.Equal(t, domain.TagOverdue, c.TagFor("M1"))
}

func TestSerializedExecutionNoOverlappingWrites(t *testing.T) {
	st := &memStore{doc: &store.Document{}, writeDelay: 15 * time.Millisecond}
	c, _, _ := newTestCoordinator(t, st)

	// Hammer the queue from several goroutines.
	var wg sync.WaitGroup
	errs := make(chan error, 24)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 3; i++ {
				errs <- c.Submit(KindSave, nil)
				errs <- c.Submit(KindAdd, AddParams{
					Code:       fmt.Sprintf("G%dI%d", g, i),
					Subject:    "Math",
					Content:    "exercise set",
					CreateDate: "01/03/2025",
					DueDate:    "01/04/2025",
				})
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	waitIdle(t, c)

	assert.Equal(t, int32(1), atomic.LoadInt32(&st.maxInflight),
		"no two save workers may ever overlap")
	assert.Len(t, c.Items(), 12)
}

func TestFailedTaskDoesNotStallQueue(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, presenter, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "DUP", "01/04/2025")
	mustAdd(t, c, "DUP", "01/04/2025") // will fail
	mustAdd(t, c, "OK", "01/04/2025")  // must still run
	waitIdle(t, c)

	require.NotEmpty(t, presenter.errorNotices())
	items := c.Items()
	require.Len(t, items, 2)
}

func TestSubmissionOrderIsFIFO(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, _ := newTestCoordinator(t, st)

	// The delete is queued behind the add, so it must observe it.
	mustAdd(t, c, "A", "01/04/2025")
	require.NoError(t, c.Submit(KindDelete, DeleteParams{Codes: []string{"A"}}))
	waitIdle(t, c)

	assert.Empty(t, c.Items())
}

func TestCurrentTaskKindDuringSlowSave(t *testing.T) {
	st := &memStore{doc: &store.Document{}, writeDelay: 60 * time.Millisecond}
	c, _, _ := newTestCoordinator(t, st)

	require.NoError(t, c.Submit(KindSave, nil))

	assert.Eventually(t, func() bool {
		k := c.CurrentTaskKind()
		return k != nil && *k == KindSave
	}, 2*time.Second, time.Millisecond, "save must be observably in flight")

	waitIdle(t, c)
	assert.Nil(t, c.CurrentTaskKind())
}

func TestRoundTripThroughStore(t *testing.T) {
	st := &memStore{doc: &store.Document{}}
	c, _, _ := newTestCoordinator(t, st)

	mustAdd(t, c, "A", "01/04/2025")
	mustAdd(t, c, "B", "02/04/2025")
	waitIdle(t, c)

	// A second coordinator loading from the same store sees the same set.
	c2, _, _ := newTestCoordinator(t, st)
	require.NoError(t, c2.Submit(KindLoad, nil))
	waitIdle(t, c2)

	codes := map[string]bool{}
	for _, hw := range c2.Items() {
		codes[hw.Code] = true
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true}, codes)
}
