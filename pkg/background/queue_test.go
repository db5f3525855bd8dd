package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueDrainWaitsForAllTasks(t *testing.T) {
	q := NewQueue(2)

	var done int64
	for i := 0; i < 20; i++ {
		q.Submit("work", func(ctx context.Context) error {
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	q.Drain()

	assert.Equal(t, int64(20), atomic.LoadInt64(&done))
}

func TestQueueSubmitNeverBlocksWhenBufferIsFull(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	var done int64
	// More tasks than the buffer holds; Submit must still return.
	for i := 0; i < 300; i++ {
		q.Submit("burst", func(ctx context.Context) error {
			<-release
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	close(release)
	q.Drain()

	assert.Equal(t, int64(300), atomic.LoadInt64(&done))
}

func TestQueueTaskErrorIsAbsorbed(t *testing.T) {
	q := NewQueue(1)

	var after int64
	q.Submit("failing", func(ctx context.Context) error {
		return errors.New("write refused")
	})
	q.Submit("following", func(ctx context.Context) error {
		atomic.AddInt64(&after, 1)
		return nil
	})
	q.Drain()

	// A failed task is logged, never propagated, and does not stop the
	// worker from taking the next task.
	assert.Equal(t, int64(1), atomic.LoadInt64(&after))
}

func TestQueueTaskContextHasDeadline(t *testing.T) {
	q := NewQueue(1)

	var hasDeadline atomic.Bool
	q.Submit("deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return nil
	})
	q.Drain()

	assert.True(t, hasDeadline.Load())
}
