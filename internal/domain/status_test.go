package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	now := date(2025, time.March, 10)

	tests := []struct {
		name       string
		due        time.Time
		dueOK      bool
		explicit   Status
		remindDays int
		want       Tag
	}{
		{
			name:       "due before today is overdue",
			due:        date(2025, time.March, 9),
			dueOK:      true,
			explicit:   StatusPending,
			remindDays: 3,
			want:       TagOverdue,
		},
		{
			name:       "due today",
			due:        date(2025, time.March, 10),
			dueOK:      true,
			explicit:   StatusPending,
			remindDays: 3,
			want:       TagDueToday,
		},
		{
			name:       "due within remind window is due soon",
			due:        date(2025, time.March, 13),
			dueOK:      true,
			explicit:   StatusPending,
			remindDays: 3,
			want:       TagDueSoon,
		},
		{
			name:       "due beyond remind window is pending",
			due:        date(2025, time.March, 14),
			dueOK:      true,
			explicit:   StatusPending,
			remindDays: 3,
			want:       TagPending,
		},
		{
			name:       "completed overrides overdue date",
			due:        date(2020, time.January, 1),
			dueOK:      true,
			explicit:   StatusCompleted,
			remindDays: 3,
			want:       TagCompleted,
		},
		{
			name:       "completed overrides unparseable date",
			dueOK:      false,
			explicit:   StatusCompleted,
			remindDays: 3,
			want:       TagCompleted,
		},
		{
			name:       "unparseable date degrades to pending",
			dueOK:      false,
			explicit:   StatusPending,
			remindDays: 3,
			want:       TagPending,
		},
		{
			name:       "zero remind days leaves tomorrow pending",
			due:        date(2025, time.March, 11),
			dueOK:      true,
			explicit:   StatusPending,
			remindDays: 0,
			want:       TagPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.due, tt.dueOK, tt.explicit, now, tt.remindDays)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := date(2025, time.June, 1)
	due := date(2025, time.June, 3)

	first := Classify(due, true, StatusPending, now, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(due, true, StatusPending, now, 3))
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	// 23:59 due vs 00:01 now on the same day must still be due today.
	due := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 10, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, TagDueToday, Classify(due, true, StatusPending, now, 3))
}

func TestTagWeight(t *testing.T) {
	assert.Equal(t, 0, TagDueToday.Weight())
	assert.Equal(t, 1, TagOverdue.Weight())
	assert.Equal(t, 2, TagDueSoon.Weight())
	assert.Equal(t, 3, TagPending.Weight())
	assert.Equal(t, 4, TagCompleted.Weight())
}
