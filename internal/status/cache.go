package status

import (
	"time"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/hwdate"
)

// Cache memoizes derived status tags by homework code.
//
// Cache is not safe for concurrent use; all mutation happens on the
// coordinator goroutine. Snapshot produces a private copy for worker
// goroutines that need read access off-thread.
type Cache struct {
	parser        *hwdate.Parser
	tags          map[string]domain.Tag
	lastRecompute time.Time
}

// NewCache creates an empty cache backed by the given date parser.
func NewCache(parser *hwdate.Parser) *Cache {
	return &Cache{
		parser: parser,
		tags:   make(map[string]domain.Tag),
	}
}

// RecomputeAll replaces the entire mapping from the given collection.
// Called on load completion, on the periodic recompute, and on day
// rollover, where the passage of time can change many tags at once.
func (c *Cache) RecomputeAll(items []domain.Homework, now time.Time, remindDays int) {
	c.tags = make(map[string]domain.Tag, len(items))
	for _, hw := range items {
		due, ok := c.parser.Parse(hw.DueDate)
		c.tags[hw.Code] = domain.Classify(due, ok, hw.Status, now, remindDays)
	}
	c.lastRecompute = now
}

// Get returns the cached tag for code. On a miss it recomputes from the
// matching item via find, stores the result, and returns it. A code with
// no matching item degrades to TagPending; a miss is never an error.
func (c *Cache) Get(
	code string,
	find func(code string) (domain.Homework, bool),
	now time.Time,
	remindDays int,
) domain.Tag {
	if tag, hit := c.tags[code]; hit {
		return tag
	}

	hw, found := find(code)
	if !found {
		return domain.TagPending
	}

	due, ok := c.parser.Parse(hw.DueDate)
	tag := domain.Classify(due, ok, hw.Status, now, remindDays)
	c.tags[code] = tag
	return tag
}

// Peek returns the cached tag without healing a miss, defaulting to
// TagPending.
func (c *Cache) Peek(code string) domain.Tag {
	if tag, hit := c.tags[code]; hit {
		return tag
	}
	return domain.TagPending
}

// Set stores a tag directly. Mutation handlers call this immediately after
// changing an item's due date or completion status, so the cache is never
// observably stale for the item just touched.
func (c *Cache) Set(code string, tag domain.Tag) {
	c.tags[code] = tag
}

// Invalidate drops the entry for code, if any.
func (c *Cache) Invalidate(code string) {
	delete(c.tags, code)
}

// Clear empties the mapping.
func (c *Cache) Clear() {
	c.tags = make(map[string]domain.Tag)
	c.lastRecompute = time.Time{}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.tags)
}

// LastRecompute returns the time of the last full recompute, or the zero
// time if none has happened since creation or Clear.
func (c *Cache) LastRecompute() time.Time {
	return c.lastRecompute
}

// Snapshot returns a copy of the mapping for read-only use off the
// coordinator goroutine.
func (c *Cache) Snapshot() map[string]domain.Tag {
	out := make(map[string]domain.Tag, len(c.tags))
	for code, tag := range c.tags {
		out[code] = tag
	}
	return out
}
