package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alekspetrov/goaltrack/internal/logging"
)

// pollTimeout is the long-poll wait passed to getUpdates, in seconds.
const pollTimeout = 30

// MessageHandler consumes inbound messages one at a time, in update order.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *Message)
}

// Poller fetches batches of pending updates. Satisfied by *Client.
type Poller interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]*Update, error)
}

// Transport runs the long-poll loop and hands each message to the handler.
// Updates within a batch are processed strictly in arrival order; the
// acknowledgement offset advances only after an update has been handled,
// so a crash mid-batch redelivers the unacknowledged tail (at-least-once).
type Transport struct {
	poller  Poller
	handler MessageHandler
	offset  int64
	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTransport creates a new polling transport.
func NewTransport(poller Poller, handler MessageHandler) *Transport {
	return &Transport{
		poller:  poller,
		handler: handler,
		stopCh:  make(chan struct{}),
	}
}

// StartPolling begins the long-polling loop in a goroutine.
func (t *Transport) StartPolling(ctx context.Context) {
	t.wg.Add(1)
	go t.pollLoop(ctx)
}

// Stop gracefully stops the polling loop.
func (t *Transport) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}

// Offset returns the current acknowledgement offset.
func (t *Transport) Offset() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

// pollLoop continuously fetches and processes updates.
func (t *Transport) pollLoop(ctx context.Context) {
	defer t.wg.Done()

	logging.WithComponent("telegram").Debug("Transport poll loop started")

	for {
		select {
		case <-ctx.Done():
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		case <-t.stopCh:
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		default:
			t.fetchAndProcess(ctx)
		}
	}
}

// fetchAndProcess fetches one batch of updates and processes it.
func (t *Transport) fetchAndProcess(ctx context.Context) {
	updates, err := t.poller.GetUpdates(ctx, t.Offset(), pollTimeout)
	if err != nil {
		if ctx.Err() == nil {
			logging.WithComponent("telegram").Warn("Error fetching updates", slog.Any("error", err))
		}
		time.Sleep(time.Second)
		return
	}

	if len(updates) == 0 {
		return
	}

	batchCtx := logging.ContextWithCorrelationID(ctx, uuid.NewString())

	for _, update := range updates {
		t.processUpdate(batchCtx, update)

		// Acknowledge this update only after it has been handled.
		t.mu.Lock()
		if update.UpdateID >= t.offset {
			t.offset = update.UpdateID + 1
		}
		t.mu.Unlock()
	}
}

// processUpdate hands a single update's message to the handler. A handler
// failure on one message must not prevent the rest of the batch.
func (t *Transport) processUpdate(ctx context.Context, update *Update) {
	if t.handler == nil || update.Message == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.WithContext(ctx).Error("Panic handling update",
				slog.Int64("update_id", update.UpdateID), slog.Any("panic", r))
		}
	}()

	t.handler.HandleMessage(ctx, update.Message)
}
