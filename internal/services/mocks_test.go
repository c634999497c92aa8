package services

import (
	"context"
	"sync"
	"sync/atomic"

	"patient-intake-service/internal/adapters"
	"patient-intake-service/internal/domain/entities"
	"patient-intake-service/internal/domain/repositories"

	"github.com/google/uuid"
)

// --- MockPatientRepository ---
// Compile-time check to ensure MockPatientRepository implements PatientRepositoryContract
var _ repositories.PatientRepositoryContract = (*MockPatientRepository)(nil)

// MockPatientRepository is a mock implementation of PatientRepositoryContract.
type MockPatientRepository struct {
	CreateFunc      func(ctx context.Context, patient *entities.Patient) error
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	DeleteFunc      func(ctx context.Context, id uuid.UUID) error
	FindByEmailFunc func(ctx context.Context, email string) (*entities.Patient, error)
	ListAllFunc     func(ctx context.Context) ([]*entities.Patient, error)

	ListAllFuncCallCount int32
	CreateFuncCallCount  int32
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	atomic.AddInt32(&m.CreateFuncCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	return nil
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrPatientNotFound
}

func (m *MockPatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return repositories.ErrPatientNotFound
}

func (m *MockPatientRepository) FindByEmail(ctx context.Context, email string) (*entities.Patient, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrPatientNotFound
}

func (m *MockPatientRepository) ListAll(ctx context.Context) ([]*entities.Patient, error) {
	atomic.AddInt32(&m.ListAllFuncCallCount, 1)
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// --- MockQueueAdapter ---
var _ adapters.QueueAdapter = (*MockQueueAdapter)(nil)

type MockQueueAdapter struct {
	PublishFunc        func(ctx context.Context, queueName string, jobData []byte) error
	StartConsumingFunc func(ctx context.Context, queueName string, handler adapters.JobHandler) error

	mu                sync.Mutex
	PublishedMessages map[string][][]byte
	Handlers          map[string]adapters.JobHandler
	Stopped           map[string]bool
}

func NewMockQueueAdapter() *MockQueueAdapter {
	return &MockQueueAdapter{
		PublishedMessages: make(map[string][][]byte),
		Handlers:          make(map[string]adapters.JobHandler),
		Stopped:           make(map[string]bool),
	}
}

func (m *MockQueueAdapter) Publish(ctx context.Context, queueName string, jobData []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, queueName, jobData)
	}
	m.PublishedMessages[queueName] = append(m.PublishedMessages[queueName], jobData)
	return nil
}

func (m *MockQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler adapters.JobHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartConsumingFunc != nil {
		return m.StartConsumingFunc(ctx, queueName, handler)
	}
	m.Handlers[queueName] = handler
	return nil
}

func (m *MockQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped[queueName] = true
	return nil
}

func (m *MockQueueAdapter) Close() error { return nil }

func (m *MockQueueAdapter) published(queueName string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.PublishedMessages[queueName]...)
}

func (m *MockQueueAdapter) handler(queueName string) (adapters.JobHandler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.Handlers[queueName]
	return h, ok
}
