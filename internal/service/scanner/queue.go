package scanner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/domain/models"
)

// LookupFunc is invoked once per consumed scan event with the raw code.
type LookupFunc func(ctx context.Context, code string)

// Queue buffers scan events and feeds them to a single consumer, so lookups
// triggered by a continuously emitting scan surface run one at a time in
// arrival order instead of racing each other.
type Queue struct {
	events chan models.ScanEvent
	lookup LookupFunc
	logger *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewQueue builds a scan queue with the given buffer size.
func NewQueue(size int, lookup LookupFunc, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		events: make(chan models.ScanEvent, size),
		lookup: lookup,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the consumer goroutine. It runs until Stop is called or the
// context is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		go q.consume(ctx)
	})
}

// Stop shuts the consumer down. Buffered events are discarded.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
}

// Enqueue offers one scan event without blocking. When the buffer is full
// the event is dropped; a camera stream re-emits the same code soon enough
// that dropping beats backpressuring the producer.
func (q *Queue) Enqueue(event models.ScanEvent) bool {
	select {
	case q.events <- event:
		return true
	default:
		q.logger.Warn("scan queue full, dropping event",
			zap.String("code", event.Code),
			zap.String("source", string(event.Source)))
		return false
	}
}

func (q *Queue) consume(ctx context.Context) {
	for {
		select {
		case <-q.done:
			return
		case <-ctx.Done():
			return
		case event := <-q.events:
			q.logger.Debug("processing scan event",
				zap.String("code", event.Code),
				zap.String("source", string(event.Source)))
			q.lookup(ctx, event.Code)
		}
	}
}
