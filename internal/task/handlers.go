package task

import (
	"fmt"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/hwdate"
	"github.com/studyhall/hwtrack/internal/pipeline"
	"github.com/studyhall/hwtrack/internal/present"
	"github.com/studyhall/hwtrack/internal/store"
)

// executeLoad triggers the three-stage load pipeline. The handler itself
// mutates nothing; all shared-state mutation happens in the completion
// callback, back on the run goroutine.
func (c *Coordinator) executeLoad(t Task) {
	loader := pipeline.NewLoader(c.docs, c.cfg.Pipeline, c.logger)

	cb := pipeline.Callbacks{
		OnPartial: func(batch []domain.Homework, progress float64) {
			// Partial views go straight to the presenter; it is
			// concurrency-safe and the batch is a private copy.
			c.presenter.PresentList(batch, present.Stats{}, progress)
		},
		OnComplete: func(res pipeline.Result) {
			c.post(func() {
				c.homeworks = res.Homeworks
				c.dataLoaded = true
				if res.Settings != nil {
					c.settings.Merge(res.Settings)
				}

				c.cache.RecomputeAll(c.homeworks, c.now(), c.settings.RemindDays())

				if res.Total > 0 {
					c.presenter.NotifyUser(
						fmt.Sprintf("loaded %d homework records", res.Total),
						present.SeverityInfo)
				}
				c.cascade(KindRefresh, KindUpdateDerivedViews)
				c.finish(t, nil)
			})
		},
		OnError: func(err error) {
			c.post(func() {
				// Load failure falls back to an empty collection.
				c.homeworks = nil
				c.dataLoaded = true
				c.cache.Clear()
				c.finish(t, fmt.Errorf("loading document: %w", err))
			})
		},
	}

	go loader.Run(c.ctx, cb)
}

// executeSave serializes the collection and settings to the document on a
// worker goroutine. The worker writes a private snapshot; the document is
// single-writer because no two tasks ever run concurrently.
func (c *Coordinator) executeSave(t Task) {
	doc := &store.Document{
		Homeworks: append([]domain.Homework(nil), c.homeworks...),
		Settings:  c.settings.Clone(),
	}

	go func() {
		err := c.docs.Write(c.ctx, doc)
		c.post(func() {
			if err != nil {
				c.finish(t, fmt.Errorf("saving document: %w", err))
				return
			}
			c.finish(t, nil)
		})
	}()
}

// executeAdd validates and appends one record. Any validation failure
// rejects the task with no mutation and no cascade.
func (c *Coordinator) executeAdd(t Task, p AddParams) {
	if err := c.validate.Struct(p); err != nil {
		c.finish(t, fmt.Errorf("%w: %v", domain.ErrMissingFields, err))
		return
	}

	createDate, okCreate := c.parser.Parse(p.CreateDate)
	dueDate, okDue := c.parser.Parse(p.DueDate)
	if !okCreate || !okDue {
		c.finish(t, domain.ErrBadDate)
		return
	}

	// Uniqueness is checked against the live collection, not the cache.
	if _, exists := c.findByCode(p.Code); exists {
		c.finish(t, fmt.Errorf("%w: %q", domain.ErrDuplicateCode, p.Code))
		return
	}

	hw := domain.Homework{
		Code:       p.Code,
		Subject:    p.Subject,
		Content:    p.Content,
		CreateDate: hwdate.Format(createDate),
		DueDate:    hwdate.Format(dueDate),
		Status:     domain.StatusPending,
	}
	c.homeworks = append(c.homeworks, hw)
	c.cache.Set(hw.Code, domain.Classify(dueDate, true, hw.Status, c.now(), c.settings.RemindDays()))

	c.presenter.NotifyUser(fmt.Sprintf("homework %q added", hw.Code), present.SeverityInfo)
	c.cascade(KindSave, KindRefresh, KindUpdateDerivedViews)
	c.finish(t, nil)
}

// executeQuery filters by exact normalized-date match on the selected
// field and delivers the sorted view. Read-only; no cascade.
func (c *Coordinator) executeQuery(t Task, p QueryParams) {
	queryDate, ok := c.parser.Parse(p.Date)
	if !ok {
		c.finish(t, fmt.Errorf("%w: query date %q", domain.ErrBadDate, p.Date))
		return
	}
	normalized := hwdate.Format(queryDate)

	var filtered []domain.Homework
	for _, hw := range c.homeworks {
		field := hw.DueDate
		if p.Field == QueryByCreate {
			field = hw.CreateDate
		}
		if c.parser.Normalize(field) == normalized {
			filtered = append(filtered, hw)
		}
	}

	tags := c.cache.Snapshot()
	sorted := sortByUrgency(filtered, tags, c.parser)
	c.presenter.PresentList(sorted, computeStats(sorted, tags), present.ProgressComplete)

	c.logger.Debug("query executed",
		"date", normalized,
		"field", p.Field,
		"matches", len(sorted))
	c.finish(t, nil)
}

// executeDelete removes every item whose code is in the given set and
// invalidates their cache entries.
func (c *Coordinator) executeDelete(t Task, p DeleteParams) {
	codes := make(map[string]struct{}, len(p.Codes))
	for _, code := range p.Codes {
		codes[code] = struct{}{}
	}

	kept := c.homeworks[:0]
	removed := 0
	for _, hw := range c.homeworks {
		if _, hit := codes[hw.Code]; hit {
			removed++
			continue
		}
		kept = append(kept, hw)
	}
	c.homeworks = kept

	for code := range codes {
		c.cache.Invalidate(code)
	}

	c.presenter.NotifyUser(fmt.Sprintf("%d homework(s) deleted", removed), present.SeverityInfo)
	c.cascade(KindSave, KindRefresh, KindUpdateDerivedViews)
	c.finish(t, nil)
}

// executeClearAll empties the collection, the status cache and the date
// parse memo.
func (c *Coordinator) executeClearAll(t Task) {
	c.homeworks = nil
	c.cache.Clear()
	c.parser.Purge()

	c.presenter.NotifyUser("all homework cleared", present.SeverityInfo)
	c.cascade(KindSave, KindRefresh, KindUpdateDerivedViews)
	c.finish(t, nil)
}

// executeMarkCompleted flips one item to completed and pins its cache
// entry, so the cache is coherent immediately after the mutation.
func (c *Coordinator) executeMarkCompleted(t Task, p MarkCompletedParams) {
	idx := -1
	for i, hw := range c.homeworks {
		if hw.Code == p.Code {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.finish(t, fmt.Errorf("%w: %q", domain.ErrNotFound, p.Code))
		return
	}

	c.homeworks[idx].Status = domain.StatusCompleted
	c.cache.Set(p.Code, domain.TagCompleted)

	c.presenter.NotifyUser(fmt.Sprintf("homework %q marked as completed", p.Code), present.SeverityInfo)
	c.cascade(KindSave, KindRefresh, KindUpdateDerivedViews)
	c.finish(t, nil)
}

// executeRefresh rebuilds the display-filtered, sorted view. The sort runs
// on a worker over private snapshots; only presentation happens on the
// way back.
func (c *Coordinator) executeRefresh(t Task, p RefreshParams) {
	now := c.now()
	if p.Recompute {
		c.cache.RecomputeAll(c.homeworks, now, c.settings.RemindDays())
	}

	items := append([]domain.Homework(nil), c.homeworks...)
	tags := c.cache.Snapshot()

	go func() {
		display := filterDisplayable(items, c.parser, now)
		sorted := sortByUrgency(display, tags, c.parser)
		stats := computeStats(display, tags)

		c.post(func() {
			c.presenter.PresentList(sorted, stats, present.ProgressComplete)
			c.finish(t, nil)
		})
	}()
}

// executeUpdateDerivedViews recomputes the aggregate counts. Cache misses
// self-heal here, matching the behavior of the original chart update.
func (c *Coordinator) executeUpdateDerivedViews(t Task) {
	now := c.now()
	remindDays := c.settings.RemindDays()

	display := filterDisplayable(c.homeworks, c.parser, now)
	tagOf := func(hw domain.Homework) domain.Tag {
		return c.cache.Get(hw.Code, c.findByCode, now, remindDays)
	}

	agg := computeAggregates(c.homeworks, display, tagOf, c.parser, now, c.settings.ChartDays())
	c.presenter.PresentAggregates(agg)
	c.finish(t, nil)
}
