package webhook

import "sync"

// Queue is an unbounded multi-producer, single-consumer message queue.
// Producers Push; the consumer takes everything at once with Drain.
// There is no peek: a message leaves the queue only by being drained.
type Queue struct {
	mu    sync.Mutex
	items []Message
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a message. Safe for concurrent use.
func (q *Queue) Push(msg Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// Drain removes and returns every queued message in arrival order.
// Returns nil when the queue is empty.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Len reports the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
