package api

import (
	"sync"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/present"
)

// maxNotices bounds the retained notification history.
const maxNotices = 50

// MemoryPresenter implements present.Presenter by retaining the most
// recent view the task core delivered, for the HTTP layer to serve.
// It is safe for concurrent use.
type MemoryPresenter struct {
	mu       sync.Mutex
	items    []domain.Homework
	stats    present.Stats
	progress float64
	agg      present.Aggregates
	hasAgg   bool
	notices  []NoticeResponse
}

// NewMemoryPresenter creates an empty MemoryPresenter.
func NewMemoryPresenter() *MemoryPresenter {
	return &MemoryPresenter{}
}

// NotifyUser retains the notification, newest last, dropping the oldest
// past maxNotices.
func (p *MemoryPresenter) NotifyUser(message string, severity present.Severity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.notices = append(p.notices, NoticeResponse{Message: message, Severity: severity})
	if len(p.notices) > maxNotices {
		p.notices = p.notices[len(p.notices)-maxNotices:]
	}
}

// PresentList retains the delivered view. Consecutive partials during a
// bulk load accumulate; a complete view replaces whatever was shown.
func (p *MemoryPresenter) PresentList(items []domain.Homework, stats present.Stats, progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if progress < present.ProgressComplete && p.progress < present.ProgressComplete {
		p.items = append(p.items, items...)
	} else {
		p.items = append([]domain.Homework(nil), items...)
	}
	p.stats = stats
	p.progress = progress
}

// PresentAggregates retains the latest derived-view numbers.
func (p *MemoryPresenter) PresentAggregates(agg present.Aggregates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg = agg
	p.hasAgg = true
}

// List returns a copy of the latest presented view.
func (p *MemoryPresenter) List() HomeworkListResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return HomeworkListResponse{
		Items:    append([]domain.Homework{}, p.items...),
		Stats:    p.stats,
		Progress: p.progress,
	}
}

// Aggregates returns the latest derived-view numbers; ok is false until
// the core has presented them at least once.
func (p *MemoryPresenter) Aggregates() (present.Aggregates, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agg, p.hasAgg
}

// Notices returns a copy of the retained notifications, oldest first.
func (p *MemoryPresenter) Notices() []NoticeResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]NoticeResponse{}, p.notices...)
}
