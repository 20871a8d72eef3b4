package main

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tranvh/opsched/models"
	"github.com/tranvh/opsched/store"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) List(ctx context.Context, table string, filters map[string]string) ([]models.Record, error) {
	args := m.Called(ctx, table, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Record), args.Error(1)
}

func (m *MockStore) Find(ctx context.Context, table, id string) (models.Record, error) {
	args := m.Called(ctx, table, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, table, idPrefix string, fields models.Record) (models.Record, error) {
	args := m.Called(ctx, table, idPrefix, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, table, id string, fields models.Record) (models.Record, error) {
	args := m.Called(ctx, table, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, table, id string) error {
	args := m.Called(ctx, table, id)
	return args.Error(0)
}
