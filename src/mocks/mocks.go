package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aroyle/depthroute/src/models"
)

// MockGenerator implements models.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) CountTokens(model, text string) int {
	args := m.Called(model, text)
	return args.Int(0)
}

func (m *MockGenerator) Generate(ctx context.Context, model, prompt string, opts models.GenerateOptions) (string, models.Usage, error) {
	args := m.Called(ctx, model, prompt, opts)
	return args.String(0), args.Get(1).(models.Usage), args.Error(2)
}

// MockRecordStore implements models.RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Insert(ctx context.Context, rec *models.RequestRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockMemoryBrowser implements models.MemoryBrowser
type MockMemoryBrowser struct {
	mock.Mock
}

func (m *MockMemoryBrowser) Recent(ctx context.Context, limit int) ([]*models.RequestRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RequestRecord), args.Error(1)
}

func (m *MockMemoryBrowser) SearchSimilar(ctx context.Context, query string, threshold float64) (*models.MemoryMatch, error) {
	args := m.Called(ctx, query, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MemoryMatch), args.Error(1)
}
