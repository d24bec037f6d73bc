package loop

import "sync"

// inputQueue is a thread-safe FIFO queue for input events.
//
// Producers (a stdin reader, a network listener) may enqueue from any
// goroutine; only the loop goroutine dequeues, so every input reaches the
// machine on the same thread as frames.
type inputQueue[I any] struct {
	mu     sync.Mutex
	events []I
	closed bool
}

func newInputQueue[I any]() *inputQueue[I] {
	return &inputQueue[I]{
		events: make([]I, 0, 16),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *inputQueue[I]) Enqueue(e I) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)
	return true
}

// TryDequeue removes the front event without blocking.
func (q *inputQueue[I]) TryDequeue() (I, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero I
	if len(q.events) == 0 {
		return zero, false
	}

	e := q.events[0]
	// Clear the slot so the backing array does not retain the event.
	q.events[0] = zero
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Len returns the current queue length.
func (q *inputQueue[I]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close rejects further enqueues. Events already queued stay available.
func (q *inputQueue[I]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
