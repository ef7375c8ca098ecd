package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmaddocks/raytracing/service/messaging"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
)

// MessageState is the lifecycle state of a message; it doubles as the name of
// the directory the message file lives in.
type MessageState string

const (
	// MessageStatePending indicates a message is waiting to be processed
	MessageStatePending MessageState = "pending"

	// MessageStateProcessing indicates a message is being processed
	MessageStateProcessing MessageState = "processing"

	// MessageStateCompleted indicates a message was successfully processed
	MessageStateCompleted MessageState = "completed"

	// MessageStateFailed indicates a message failed processing
	MessageStateFailed MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue. Messages
// survive process restarts, which makes this queue suitable for long renders
// that should resume rather than restart from scratch.
type Message[T any] struct {
	ID         string       `json:"id"`
	Data       T            `json:"data"`
	State      MessageState `json:"state"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Deliveries int          `json:"deliveries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack acknowledges that the message was processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}

	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()

	return m.queue.completeMessage(context.Background(), m)
}

// Nack indicates that the message processing failed
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}

	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Deliveries++
	m.UpdatedAt = time.Now()

	return m.queue.failMessage(context.Background(), m)
}

// QueueConfig holds configuration for the filesystem queue
type QueueConfig struct {
	// BasePath is the directory holding the per-state subdirectories
	BasePath string

	// MaxRetries bounds how often a nacked message is redelivered before it
	// is parked in the dlq directory
	MaxRetries int
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		BasePath:   "/tmp/raytracing/queue",
		MaxRetries: 3,
	}
}

// Queue implements a filesystem-based messaging.Queue. Each message lives in
// exactly one of the state directories; transitions upload to the destination
// before deleting the source so a crash never loses a message.
type Queue[T any] struct {
	fs            afs.Service
	config        QueueConfig
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a new filesystem-based queue
func NewQueue[T any](fs afs.Service, config QueueConfig) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}

	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return q, nil
}

// Publish adds a new message to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		queue:     q,
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.upload(ctx, path.Join(q.pendingDir, messageFilename(message.ID)), data)
}

// Consume retrieves a single message, preferring retry-eligible failures over
// fresh pending messages. Returns nil, nil when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	retried, err := q.redeliverFailed(ctx)
	if err != nil {
		return nil, err
	}
	if retried != nil {
		return retried, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	obj, err := q.oldest(ctx, q.pendingDir)
	if err != nil || obj == nil {
		return nil, err
	}

	message, err := q.claim(ctx, obj, q.failedDir)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// redeliverFailed claims the oldest failed message still within the retry
// budget; messages past the budget are parked in the dlq directory.
func (q *Queue[T]) redeliverFailed(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	obj, err := q.oldest(ctx, q.failedDir)
	if err != nil || obj == nil {
		return nil, err
	}

	message, err := q.read(ctx, obj.URL())
	if err != nil {
		destURL := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}
	if message.Deliveries > q.config.MaxRetries {
		if err := q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, obj.Name())); err != nil {
			return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
		}
		return nil, nil
	}

	return q.claim(ctx, obj, q.dlqDir)
}

// oldest returns the oldest json message file in dir, or nil when empty.
// Filenames are UUIDs so "oldest" is list order, which is good enough for a
// queue whose consumers race anyway.
func (q *Queue[T]) oldest(ctx context.Context, dir string) (storage.Object, error) {
	objects, err := q.fs.List(ctx, dir, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			return obj, nil
		}
	}
	return nil, nil
}

// claim transitions a message file into the processing directory and returns
// the decoded message. An unreadable payload is quarantined in quarantineDir.
// The caller must hold q.mu.
func (q *Queue[T]) claim(ctx context.Context, obj storage.Object, quarantineDir string) (*Message[T], error) {
	message, err := q.read(ctx, obj.URL())
	if err != nil {
		destURL := path.Join(quarantineDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claimed message: %w", err)
	}
	if err := q.upload(ctx, path.Join(q.processingDir, obj.Name()), data); err != nil {
		return nil, fmt.Errorf("failed to move message to processing directory: %w", err)
	}
	if err := q.fs.Delete(ctx, obj.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete claimed message: %w", err)
	}

	return message, nil
}

// completeMessage moves a message to the completed directory
func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal completed message: %w", err)
	}

	filename := messageFilename(m.ID)
	if err := q.upload(ctx, path.Join(q.completedDir, filename), data); err != nil {
		return fmt.Errorf("failed to write message to completed directory: %w", err)
	}
	return q.removeProcessing(ctx, filename)
}

// failMessage moves a message back to failed for retry, or to DLQ once the
// retry budget is spent
func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal failed message: %w", err)
	}

	filename := messageFilename(m.ID)
	destDir := q.failedDir
	if m.Deliveries > q.config.MaxRetries {
		destDir = q.dlqDir
	}
	if err := q.upload(ctx, path.Join(destDir, filename), data); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", destDir, err)
	}
	return q.removeProcessing(ctx, filename)
}

func (q *Queue[T]) removeProcessing(ctx context.Context, filename string) error {
	processingPath := path.Join(q.processingDir, filename)
	if exists, _ := q.fs.Exists(ctx, processingPath); !exists {
		return nil
	}
	if err := q.fs.Delete(ctx, processingPath); err != nil {
		return fmt.Errorf("failed to delete message from processing directory: %w", err)
	}
	return nil
}

func (q *Queue[T]) upload(ctx context.Context, path string, data []byte) error {
	return q.fs.Upload(ctx, path, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) read(ctx context.Context, url string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", url, err)
	}

	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", url, err)
	}
	return &message, nil
}

func messageFilename(id string) string {
	return fmt.Sprintf("%s.json", id)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
