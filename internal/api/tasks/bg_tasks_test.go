package tasks

import (
	"context"
	"sync/atomic"
	"testing"

	"moviecatalog/proj/internal/lib/logger"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	bgTasks := New(logger.Discard(), 3, 10)
	bgTasks.Run()
	var runs atomic.Int32
	for i := 0; i < 5; i++ {
		assert.True(t, bgTasks.Add(func() { runs.Add(1) }))
	}
	assert.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.Equal(t, int32(5), runs.Load())
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	bgTasks := New(logger.Discard(), 1, 10)
	bgTasks.Run()
	taskRunned := false
	bgTasks.Add(func() { panic("boom") })
	bgTasks.Add(func() { taskRunned = true })
	assert.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.True(t, taskRunned)
}

func TestAddAfterShutdown(t *testing.T) {
	bgTasks := New(logger.Discard(), 1, 1)
	bgTasks.Run()
	assert.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.False(t, bgTasks.Add(func() {}))
}

func TestAddQueueFull(t *testing.T) {
	bgTasks := New(logger.Discard(), 1, 1)
	// workers are not running, the single slot fills up
	assert.True(t, bgTasks.Add(func() {}))
	assert.False(t, bgTasks.Add(func() {}))
	assert.Len(t, bgTasks.tasks, 1)
}
