package mainloop

import "sync"

// Queue collects posted tasks until Drain runs them.
// The goroutine running Drain is the main thread while it drains.
type Queue struct {
	mu      sync.Mutex
	tasks   []func()
	drainer uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, fn)
}

func (q *Queue) IsMainThread() bool {
	q.mu.Lock()
	drainer := q.drainer
	q.mu.Unlock()
	return drainer != 0 && drainer == goroutineID()
}

// Pending returns the number of queued tasks.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs queued tasks, including ones posted while draining, and
// returns how many ran.
func (q *Queue) Drain() int {
	q.mu.Lock()
	q.drainer = goroutineID()
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.drainer = 0
		q.mu.Unlock()
	}()

	ran := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
		ran++
	}
}
