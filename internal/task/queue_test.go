package task

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newQueuedTask(t *testing.T, kind Kind, params Params) Task {
	t.Helper()
	task, err := newTask(kind, params, time.Now())
	require.NoError(t, err)
	return task
}

func TestNewQueue(t *testing.T) {
	queue := NewQueue(10, setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.tasks))
	assert.Equal(t, 0, queue.Depth())
}

func TestEnqueue(t *testing.T) {
	queue := NewQueue(2, setupTestLogger())

	err := queue.Enqueue(newQueuedTask(t, KindRefresh, nil))
	assert.NoError(t, err)

	err = queue.Enqueue(newQueuedTask(t, KindSave, nil))
	assert.NoError(t, err)
	assert.Equal(t, 2, queue.Depth())

	// Queue full
	err = queue.Enqueue(newQueuedTask(t, KindSave, nil))
	assert.ErrorIs(t, err, ErrQueueFull)

	// Dequeue one item to make space
	<-queue.Chan()

	err = queue.Enqueue(newQueuedTask(t, KindSave, nil))
	assert.NoError(t, err)
}

func TestEnqueuePreservesFIFO(t *testing.T) {
	queue := NewQueue(8, setupTestLogger())

	kinds := []Kind{KindLoad, KindSave, KindRefresh, KindUpdateDerivedViews}
	for _, kind := range kinds {
		require.NoError(t, queue.Enqueue(newQueuedTask(t, kind, nil)))
	}

	for _, want := range kinds {
		got := <-queue.Chan()
		assert.Equal(t, want, got.Kind)
	}
}

func TestClose(t *testing.T) {
	queue := NewQueue(10, setupTestLogger())

	queued := newQueuedTask(t, KindSave, nil)
	require.NoError(t, queue.Enqueue(queued))

	queue.Close()

	err := queue.Enqueue(newQueuedTask(t, KindSave, nil))
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Already-queued tasks can still be drained.
	received := <-queue.Chan()
	assert.Equal(t, queued.ID, received.ID)

	select {
	case _, ok := <-queue.Chan():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for closed channel read")
	}
}

func TestNewTaskParamsValidation(t *testing.T) {
	now := time.Now()

	_, err := newTask(KindAdd, nil, now)
	assert.ErrorIs(t, err, ErrBadParams, "add requires params")

	_, err = newTask(KindSave, AddParams{}, now)
	assert.ErrorIs(t, err, ErrBadParams, "mismatched params are rejected")

	task, err := newTask(KindRefresh, nil, now)
	require.NoError(t, err, "refresh params are optional")
	assert.Equal(t, KindRefresh, task.Kind)

	task, err = newTask(KindMarkCompleted, MarkCompletedParams{Code: "M1"}, now)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, Task{}.ID, "tasks get unique ids")
	assert.Equal(t, now, task.SubmittedAt)
}
