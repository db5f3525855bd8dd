package background

import (
	"context"
	"log"
	"sync"
	"time"
)

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Queue executes fire-and-forget writes (alias learning, catalog
// backfill) off the request path. Task failures are logged and never
// propagated; Drain exists so tests can await completion.
type Queue struct {
	tasks   chan task
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewQueue(workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		tasks:   make(chan task, 128),
		timeout: 10 * time.Second,
	}
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// Submit never blocks the caller: when the buffer is full the task runs
// on its own goroutine instead.
func (q *Queue) Submit(name string, run func(ctx context.Context) error) {
	q.wg.Add(1)
	t := task{name: name, run: run}
	select {
	case q.tasks <- t:
	default:
		go q.execute(t)
	}
}

// Drain blocks until every submitted task has finished.
func (q *Queue) Drain() {
	q.wg.Wait()
}

func (q *Queue) worker() {
	for t := range q.tasks {
		q.execute(t)
	}
}

func (q *Queue) execute(t task) {
	defer q.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := t.run(ctx); err != nil {
		log.Printf("background task %s failed: %v", t.name, err)
	}
}
