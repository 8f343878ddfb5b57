package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadPath(ctx context.Context, raw string) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx, raw)
	ds, _ := args.Get(0).(*dataprocessing.Dataset)
	return ds, args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) HTML(series []domain.Series) ([]byte, error) {
	args := m.Called(series)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockRenderer) PNG(ctx context.Context, series []domain.Series) ([]byte, error) {
	args := m.Called(ctx, series)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) ObserveChart(ctx context.Context, format string, err error) {
	m.Called(ctx, format, err)
}

func (m *MockObserver) ObserveExport(ctx context.Context, format string) {
	m.Called(ctx, format)
}
