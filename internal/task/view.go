package task

import (
	"sort"
	"time"

	"github.com/studyhall/hwtrack/internal/domain"
	"github.com/studyhall/hwtrack/internal/hwdate"
	"github.com/studyhall/hwtrack/internal/present"
)

// shouldDisplay hides a completed item once its due date is strictly
// before today; everything else is always shown.
func shouldDisplay(hw domain.Homework, parser *hwdate.Parser, now time.Time) bool {
	if !hw.Completed() {
		return true
	}
	due, ok := parser.Parse(hw.DueDate)
	if !ok {
		return true
	}
	y, m, d := due.Date()
	ny, nm, nd := now.Date()
	dueDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return !dueDay.Before(today)
}

func filterDisplayable(items []domain.Homework, parser *hwdate.Parser, now time.Time) []domain.Homework {
	out := make([]domain.Homework, 0, len(items))
	for _, hw := range items {
		if shouldDisplay(hw, parser, now) {
			out = append(out, hw)
		}
	}
	return out
}

// sortByUrgency orders items by tag weight (due today first, completed
// last), then by due date ascending. Items with unparseable due dates
// sort to the front of their weight bucket. The input is not modified.
func sortByUrgency(items []domain.Homework, tags map[string]domain.Tag, parser *hwdate.Parser) []domain.Homework {
	type entry struct {
		hw     domain.Homework
		weight int
		due    time.Time
	}

	entries := make([]entry, len(items))
	for i, hw := range items {
		e := entry{hw: hw}
		if hw.Completed() {
			e.weight = domain.TagCompleted.Weight()
		} else {
			tag, hit := tags[hw.Code]
			if !hit {
				tag = domain.TagPending
			}
			e.weight = tag.Weight()
		}
		if due, ok := parser.Parse(hw.DueDate); ok {
			e.due = due
		}
		entries[i] = e
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight < entries[j].weight
		}
		return entries[i].due.Before(entries[j].due)
	})

	sorted := make([]domain.Homework, len(entries))
	for i, e := range entries {
		sorted[i] = e.hw
	}
	return sorted
}

// computeStats produces the headline counts over displayable items.
// Overdue and due-today count only items not explicitly completed.
func computeStats(items []domain.Homework, tags map[string]domain.Tag) present.Stats {
	stats := present.Stats{Total: len(items)}
	for _, hw := range items {
		if hw.Completed() {
			stats.Completed++
			continue
		}
		switch tags[hw.Code] {
		case domain.TagOverdue:
			stats.Overdue++
		case domain.TagDueToday:
			stats.DueToday++
		}
	}
	return stats
}

// computeAggregates produces the derived-view numbers: per-tag counts over
// displayable items, and per-day created/due counts over the trailing
// chartDays window across the whole collection.
func computeAggregates(
	all []domain.Homework,
	display []domain.Homework,
	tagOf func(domain.Homework) domain.Tag,
	parser *hwdate.Parser,
	now time.Time,
	chartDays int,
) present.Aggregates {
	byTag := map[domain.Tag]int{
		domain.TagCompleted: 0,
		domain.TagOverdue:   0,
		domain.TagDueToday:  0,
		domain.TagDueSoon:   0,
		domain.TagPending:   0,
	}
	for _, hw := range display {
		if hw.Completed() {
			byTag[domain.TagCompleted]++
			continue
		}
		byTag[tagOf(hw)]++
	}

	days := make([]string, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		days = append(days, hwdate.Format(now.AddDate(0, 0, -i)))
	}

	created := make([]int, len(days))
	due := make([]int, len(days))
	for _, hw := range all {
		normCreate := parser.Normalize(hw.CreateDate)
		normDue := parser.Normalize(hw.DueDate)
		for i, day := range days {
			if normCreate == day {
				created[i]++
			}
			if normDue == day {
				due[i]++
			}
		}
	}

	return present.Aggregates{
		ByTag:   byTag,
		Days:    days,
		Created: created,
		Due:     due,
	}
}
