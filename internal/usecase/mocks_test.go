package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockLeadRepository) MarkPaid(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) CountBy(ctx context.Context, column string) ([]entity.CountBucket, error) {
	args := m.Called(ctx, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CountBucket), args.Error(1)
}

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, lead entity.ForwardedLead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendLeadConfirmation(lead *entity.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}

func (m *MockEmailService) SendOperatorAlert(lead *entity.Lead) error {
	args := m.Called(lead)
	return args.Error(0)
}

// blockingForwarder holds every Forward call until release is closed, then records the
// key and the context state it saw.
type blockingForwarder struct {
	release chan struct{}

	mu   sync.Mutex
	keys []string
	err  error
}

func (f *blockingForwarder) Forward(ctx context.Context, lead entity.ForwardedLead) error {
	<-f.release
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, lead.IdempotencyKey)
	f.err = ctx.Err()
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	captured []string
	payments int
	errors   []string
}

func (m *recordingMetrics) LeadCaptured(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captured = append(m.captured, source)
}

func (m *recordingMetrics) PaymentConfirmed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments++
}

func (m *recordingMetrics) IntegrationError(service string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, service)
}
