package interaction

import "sync"

// fifo is a ticket lock: waiters get in strictly in arrival order.
type fifo struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func (q *fifo) init() {
	q.cond = sync.NewCond(&q.mu)
}

func (q *fifo) acquire() {
	q.mu.Lock()
	t := q.next
	q.next++
	for q.serving != t {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

func (q *fifo) release() {
	q.mu.Lock()
	q.serving++
	q.cond.Broadcast()
	q.mu.Unlock()
}
