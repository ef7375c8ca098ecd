package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmaddocks/raytracing/service/messaging"
)

// Config for the in-memory queue implementation.
type Config struct {
	// MaxRetries bounds how often a nacked message is redelivered before it
	// lands on the dead letter queue.
	MaxRetries int

	// RetryDelay is how long a nacked message waits before redelivery.
	RetryDelay time.Duration

	// QueueBuffer is the channel capacity; publishers block once it is full.
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for the in-memory queue.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		QueueBuffer: 100,
	}
}

// Queue is an in-memory messaging.Queue backed by a buffered channel. The
// renderer uses it to fan tiles out to workers; the event service uses it for
// per-type event queues.
type Queue[T any] struct {
	config   Config
	messages chan *Message[T]

	dlqMu sync.Mutex
	dlq   []*Message[T]
}

// NewQueue creates a new in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		config:   config,
		messages: make(chan *Message[T], config.QueueBuffer),
	}
}

// Publish adds a new item to the queue. The payload is copied, so the caller
// may keep mutating the original.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:         uuid.New().String(),
		payload:    *t,
		queue:      q,
		enqueuedAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available or the context ends.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages waiting in the queue.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages parked on the dead letter queue.
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// Message implements messaging.Message for the in-memory queue.
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	deliveries int
	enqueuedAt time.Time

	mu        sync.Mutex
	processed bool
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack reports a processing failure. Under the retry limit the payload is
// redelivered after the configured delay; past the limit it is parked on the
// dead letter queue.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.deliveries++

	if m.deliveries > m.queue.config.MaxRetries {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
		return nil
	}

	redelivery := &Message[T]{
		id:         m.id,
		payload:    m.payload,
		queue:      m.queue,
		deliveries: m.deliveries,
		enqueuedAt: time.Now(),
	}
	time.AfterFunc(m.queue.config.RetryDelay, func() {
		m.queue.messages <- redelivery
	})
	return nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
