package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"immopro/server/internal/logging"
	"immopro/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler consumes one batch of saved scenarios
type Handler func([]*models.Scenario) error

// ScenarioQueue is an in-memory queue of saved scenario batches. Every batch
// is handed to every subscriber.
type ScenarioQueue struct {
	items    chan []*models.Scenario
	stopped  chan struct{}
	maxSize  int
	started  bool
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []Handler
}

// NewScenarioQueue creates a queue holding at most bufferSize batches
func NewScenarioQueue(bufferSize int, logger *logrus.Logger) *ScenarioQueue {
	return &ScenarioQueue{
		items:    make(chan []*models.Scenario, bufferSize),
		stopped:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logging.OrDefault(logger),
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch without blocking
func (q *ScenarioQueue) Push(scenarios []*models.Scenario) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- scenarios:
		q.logger.WithField("batch_size", len(scenarios)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler called for each batch
func (q *ScenarioQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins dispatching batches. Calling it twice is a no-op.
func (q *ScenarioQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.process()
}

func (q *ScenarioQueue) process() {
	defer close(q.stopped)
	// items is closed by Close, so batches accepted before it are still delivered
	for batch := range q.items {
		q.processBatch(batch)
	}
}

func (q *ScenarioQueue) processBatch(batch []*models.Scenario) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits for the accepted ones to be handled
func (q *ScenarioQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.items)
	q.mu.Unlock()

	if started {
		<-q.stopped
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *ScenarioQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *ScenarioQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
