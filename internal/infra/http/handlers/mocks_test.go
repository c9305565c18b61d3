package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/presale-funnel/internal/entity"
	"github.com/xavierca1/presale-funnel/internal/usecase"
)

type MockLeadCapturer struct {
	mock.Mock
}

func (m *MockLeadCapturer) Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CaptureLeadOutput), args.Error(1)
}

type MockLeadQuerier struct {
	mock.Mock
}

func (m *MockLeadQuerier) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadQuerier) Get(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadQuerier) Traffic(ctx context.Context) (*usecase.TrafficReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TrafficReport), args.Error(1)
}

type MockStatusUpdater struct {
	mock.Mock
}

func (m *MockStatusUpdater) Execute(ctx context.Context, input usecase.UpdateLeadStatusInput) (*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type MockPaymentMarker struct {
	mock.Mock
}

func (m *MockPaymentMarker) Execute(ctx context.Context, input usecase.MarkLeadPaidInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}
