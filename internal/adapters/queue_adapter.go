package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"patient-intake-service/internal/logging"
)

// ErrQueueClosed is returned by Publish and StartConsuming after Close.
var ErrQueueClosed = errors.New("queue adapter closed")

// JobHandler processes one message taken from a queue.
type JobHandler func(ctx context.Context, data []byte) error

// QueueAdapter is the messaging surface the services depend on.
type QueueAdapter interface {
	// Publish sends jobData to queueName.
	Publish(ctx context.Context, queueName string, jobData []byte) error
	// StartConsuming runs handler in the background for every message on queueName.
	StartConsuming(ctx context.Context, queueName string, handler JobHandler) error
	// StopConsuming stops the consumer of queueName. Messages already queued stay queued.
	StopConsuming(ctx context.Context, queueName string) error
	// Close stops every consumer and waits for them to return.
	Close() error
}

// InMemoryQueueAdapter implements QueueAdapter on top of buffered channels.
type InMemoryQueueAdapter struct {
	mu          sync.Mutex
	queues      map[string]chan []byte
	stopChans   map[string]chan struct{}
	capacity    int
	publishWait time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
	consumerCtx context.Context
	cancelFunc  context.CancelFunc
	closed      bool
}

// NewInMemoryQueueAdapter creates an adapter whose queues hold up to capacity messages.
func NewInMemoryQueueAdapter(capacity int, logger *zap.Logger) *InMemoryQueueAdapter {
	if capacity <= 0 {
		capacity = 100
	}
	consumerCtx, cancelFunc := context.WithCancel(context.Background())
	return &InMemoryQueueAdapter{
		queues:      make(map[string]chan []byte),
		stopChans:   make(map[string]chan struct{}),
		capacity:    capacity,
		publishWait: 2 * time.Second,
		logger:      logging.OrNop(logger).Named("queue"),
		consumerCtx: consumerCtx,
		cancelFunc:  cancelFunc,
	}
}

func (q *InMemoryQueueAdapter) queue(queueName string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	ch, ok := q.queues[queueName]
	if !ok {
		ch = make(chan []byte, q.capacity)
		q.queues[queueName] = ch
		q.logger.Debug("queue created", zap.String("queue", queueName))
	}
	return ch, nil
}

// Publish enqueues jobData, giving up when ctx ends or the queue stays full past the publish timeout.
func (q *InMemoryQueueAdapter) Publish(ctx context.Context, queueName string, jobData []byte) error {
	ch, err := q.queue(queueName)
	if err != nil {
		return err
	}

	timer := time.NewTimer(q.publishWait)
	defer timer.Stop()

	select {
	case ch <- jobData:
		q.logger.Debug("message published", zap.String("queue", queueName), zap.Int("depth", len(ch)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout publishing to queue %s", queueName)
	}
}

// StartConsuming starts one consumer goroutine for queueName.
// Only one consumer per queue is allowed at a time.
func (q *InMemoryQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	ch, err := q.queue(queueName)
	if err != nil {
		return err
	}

	q.mu.Lock()
	if _, running := q.stopChans[queueName]; running {
		q.mu.Unlock()
		return fmt.Errorf("queue %s already has a consumer", queueName)
	}
	stop := make(chan struct{})
	q.stopChans[queueName] = stop
	q.wg.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.wg.Done()
		q.logger.Info("consumer started", zap.String("queue", queueName))
		for {
			select {
			case data := <-ch:
				if err := handler(q.consumerCtx, data); err != nil {
					q.logger.Error("message handler failed", zap.String("queue", queueName), zap.Error(err))
				}
			case <-stop:
				q.logger.Info("consumer stopped", zap.String("queue", queueName))
				return
			case <-ctx.Done():
				q.logger.Info("consumer context cancelled", zap.String("queue", queueName))
				return
			case <-q.consumerCtx.Done():
				return
			}
		}
	}()
	return nil
}

func (q *InMemoryQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if stop, ok := q.stopChans[queueName]; ok {
		close(stop)
		delete(q.stopChans, queueName)
	}
	return nil
}

func (q *InMemoryQueueAdapter) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.cancelFunc()
	q.wg.Wait()
	q.logger.Info("all consumers finished")
	return nil
}
