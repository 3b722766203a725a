package vault

import (
	"context"
	"log/slog"
	"sync"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"
)

// Operation is one queued document mutation.
type Operation func(doc *entity.Document) error

type queuedOp struct {
	op   Operation
	done func(error)
}

// CoalescingQueue collapses rapid successive mutations of the same entity
// into a single write. A re-enqueued key replaces its pending operation but
// keeps its original position, so first-touch order is preserved while only
// the latest mutation per key reaches the document. Operations execute
// sequentially, never concurrently.
type CoalescingQueue struct {
	tx     repository.DocumentTransaction
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string]queuedOp
	order   []string
	running bool
}

// NewCoalescingQueue creates a queue draining into tx.
func NewCoalescingQueue(tx repository.DocumentTransaction, logger *slog.Logger) *CoalescingQueue {
	q := &CoalescingQueue{
		tx:      tx,
		logger:  logger,
		pending: make(map[string]queuedOp),
	}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Enqueue schedules op under key, replacing any pending operation for the
// same key; the superseded operation's done callback is dropped with it.
// Enqueue returns immediately; done (may be nil) is invoked with the
// execution result once the surviving operation runs.
func (q *CoalescingQueue) Enqueue(key string, op Operation, done func(error)) {
	q.mu.Lock()
	if _, exists := q.pending[key]; !exists {
		q.order = append(q.order, key)
	}
	q.pending[key] = queuedOp{op: op, done: done}
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
}

// Drain blocks until every queued operation has executed.
func (q *CoalescingQueue) Drain() {
	q.mu.Lock()
	for q.running || len(q.order) > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// Len reports how many distinct keys are queued.
func (q *CoalescingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.order)
}

func (q *CoalescingQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.order) == 0 {
			q.running = false
			q.cond.Broadcast()
			q.mu.Unlock()

			return
		}
		key := q.order[0]
		q.order = q.order[1:]
		queued := q.pending[key]
		delete(q.pending, key)
		q.mu.Unlock()

		err := q.tx.Execute(context.Background(), repository.WriteOptions{}, queued.op)
		if err != nil {
			q.logger.Warn("coalesced write failed",
				slog.String("key", key),
				slog.Any("error", err))
		}
		if queued.done != nil {
			queued.done(err)
		}
	}
}
