package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"patient-intake-service/internal/adapters"
	"patient-intake-service/internal/logging"

	"go.uber.org/zap"
)

const PatientRegisteredQueue = "patient_registered"

var ErrConsumerStopped = errors.New("patient event consumer is shutting down, cannot accept new events")

// PatientRegisteredEvent is published after a patient is stored.
type PatientRegisteredEvent struct {
	EventID      string          `json:"eventId"`
	PatientID    string          `json:"patientId"`
	PatientFHIR  json.RawMessage `json:"patientFhir"`
	RegisteredAt time.Time       `json:"registeredAt"`
}

// PatientEventHandler processes one registration event.
type PatientEventHandler func(ctx context.Context, event PatientRegisteredEvent) error

// PatientEventConsumer reads registration events from the queue and fans them out to a worker pool.
type PatientEventConsumer struct {
	queueAdapter adapters.QueueAdapter
	handle       PatientEventHandler
	logger       *zap.Logger
	numWorkers   int

	mu       sync.RWMutex
	stopped  bool
	jobChan  chan PatientRegisteredEvent
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	processed atomic.Int64
}

// NewPatientEventConsumer creates a consumer with numWorkers workers and a job buffer of size buffer.
// A nil handler logs each event.
func NewPatientEventConsumer(
	queueAdapter adapters.QueueAdapter,
	numWorkers, buffer int,
	handler PatientEventHandler,
	logger *zap.Logger,
) *PatientEventConsumer {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	c := &PatientEventConsumer{
		queueAdapter: queueAdapter,
		logger:       logging.OrNop(logger).Named("patient_events"),
		numWorkers:   numWorkers,
		jobChan:      make(chan PatientRegisteredEvent, buffer),
		stopCh:       make(chan struct{}),
	}
	c.handle = handler
	if c.handle == nil {
		c.handle = c.logEvent
	}
	return c
}

// Start launches the workers and subscribes to the registration queue.
// Cancelling ctx stops the consumer like Stop does.
func (c *PatientEventConsumer) Start(ctx context.Context) error {
	c.wg.Add(c.numWorkers)
	for i := 1; i <= c.numWorkers; i++ {
		go c.worker(i)
	}

	if err := c.queueAdapter.StartConsuming(ctx, PatientRegisteredQueue, c.handleMessage); err != nil {
		_ = c.Stop(context.Background())
		return fmt.Errorf("start consumer for %s: %w", PatientRegisteredQueue, err)
	}
	c.logger.Info("patient event consumer started", zap.Int("workers", c.numWorkers))

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-c.stopCh:
		}
	}()
	return nil
}

func (c *PatientEventConsumer) worker(id int) {
	defer c.wg.Done()
	for event := range c.jobChan {
		if err := c.handle(context.Background(), event); err != nil {
			c.logger.Error("registration event failed",
				zap.Int("worker", id), zap.String("event_id", event.EventID), zap.Error(err))
			continue
		}
		c.processed.Add(1)
	}
}

func (c *PatientEventConsumer) handleMessage(ctx context.Context, data []byte) error {
	var event PatientRegisteredEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode registration event: %w", err)
	}
	return c.Enqueue(ctx, event)
}

// Enqueue hands an event to the worker pool.
func (c *PatientEventConsumer) Enqueue(ctx context.Context, event PatientRegisteredEvent) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stopped {
		return ErrConsumerStopped
	}
	select {
	case c.jobChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop unsubscribes from the queue, lets the workers drain queued events and waits for them,
// or until ctx ends.
func (c *PatientEventConsumer) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() {
		if err := c.queueAdapter.StopConsuming(ctx, PatientRegisteredQueue); err != nil {
			c.logger.Warn("stop consuming failed", zap.Error(err))
		}
		c.mu.Lock()
		c.stopped = true
		close(c.jobChan)
		c.mu.Unlock()
		close(c.stopCh)
	})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.logger.Info("patient event consumer stopped", zap.Int64("processed", c.processed.Load()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns how many events were handled successfully.
func (c *PatientEventConsumer) Processed() int64 {
	return c.processed.Load()
}

func (c *PatientEventConsumer) logEvent(_ context.Context, event PatientRegisteredEvent) error {
	c.logger.Info("patient registered",
		zap.String("event_id", event.EventID),
		zap.String("patient_id", event.PatientID),
		zap.Time("registered_at", event.RegisteredAt),
		zap.Int("fhir_bytes", len(event.PatientFHIR)))
	return nil
}
