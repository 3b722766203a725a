package vault

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"casevault/internal/domain/entity"
	"casevault/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedTx applies operations to an in-memory document and can hold the
// first execution open so the queue's coalescing window is deterministic.
type gatedTx struct {
	mu   sync.Mutex
	doc  *entity.Document
	gate chan struct{}
	err  error
}

func newGatedTx() *gatedTx {
	return &gatedTx{doc: entity.NewDocument()}
}

func (t *gatedTx) Execute(_ context.Context, _ repository.WriteOptions, fn func(doc *entity.Document) error) error {
	if t.gate != nil {
		<-t.gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}

	return fn(t.doc)
}

func (t *gatedTx) View(_ context.Context, fn func(doc *entity.Document) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(t.doc.Clone())
}

func testQueueLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func appendNote(id, content string) Operation {
	return func(doc *entity.Document) error {
		doc.Notes = append(doc.Notes, entity.Note{ID: id, Content: content})

		return nil
	}
}

func TestCoalescingQueueExecutesInOrder(t *testing.T) {
	tx := newGatedTx()
	queue := NewCoalescingQueue(tx, testQueueLogger())

	queue.Enqueue("note/a", appendNote("a", "first"), nil)
	queue.Enqueue("note/b", appendNote("b", "second"), nil)
	queue.Drain()

	require.Len(t, tx.doc.Notes, 2)
	assert.Equal(t, "a", tx.doc.Notes[0].ID)
	assert.Equal(t, "b", tx.doc.Notes[1].ID)
	assert.Zero(t, queue.Len())
}

func TestCoalescingQueueReplacesSameKey(t *testing.T) {
	tx := newGatedTx()
	tx.gate = make(chan struct{})
	queue := NewCoalescingQueue(tx, testQueueLogger())

	var supersededDone, survivorDone bool
	// The blocker parks the drain goroutine so the next three enqueues
	// land while the queue is backed up.
	queue.Enqueue("blocker", appendNote("blocker", ""), nil)
	queue.Enqueue("note/x", appendNote("x", "v1"), func(error) { supersededDone = true })
	queue.Enqueue("note/y", appendNote("y", ""), nil)
	queue.Enqueue("note/x", appendNote("x", "v2"), func(error) { survivorDone = true })
	close(tx.gate)
	queue.Drain()

	// note/x ran once with the latest mutation, in its first-touch slot
	// ahead of note/y.
	require.Len(t, tx.doc.Notes, 3)
	assert.Equal(t, "blocker", tx.doc.Notes[0].ID)
	assert.Equal(t, "x", tx.doc.Notes[1].ID)
	assert.Equal(t, "v2", tx.doc.Notes[1].Content)
	assert.Equal(t, "y", tx.doc.Notes[2].ID)

	assert.True(t, survivorDone)
	assert.False(t, supersededDone, "superseded operation's callback must be dropped")
}

func TestCoalescingQueueReportsExecutionError(t *testing.T) {
	tx := newGatedTx()
	tx.err = assert.AnError
	queue := NewCoalescingQueue(tx, testQueueLogger())

	var got error
	done := make(chan struct{})
	queue.Enqueue("note/a", appendNote("a", ""), func(err error) {
		got = err
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("done callback never fired")
	}
	assert.ErrorIs(t, got, assert.AnError)
}

func TestCoalescingQueueDrainOnIdleQueue(t *testing.T) {
	queue := NewCoalescingQueue(newGatedTx(), testQueueLogger())
	queue.Drain()
	assert.Zero(t, queue.Len())
}
