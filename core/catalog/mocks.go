package catalog

import (
	"context"

	"github.com/sksmith/fulfilment/test"
)

type MockService struct {
	SaveStoreFunc   func(ctx context.Context, store Store) error
	SaveProductFunc func(ctx context.Context, product Product) error
	HandleEventFunc func(ctx context.Context, event Event) error
	*test.CallWatcher
}

func NewMockService() *MockService {
	return &MockService{
		SaveStoreFunc:   func(ctx context.Context, store Store) error { return nil },
		SaveProductFunc: func(ctx context.Context, product Product) error { return nil },
		HandleEventFunc: func(ctx context.Context, event Event) error { return nil },
		CallWatcher:     test.NewCallWatcher(),
	}
}

func (m *MockService) SaveStore(ctx context.Context, store Store) error {
	m.AddCall(ctx, store)
	return m.SaveStoreFunc(ctx, store)
}

func (m *MockService) SaveProduct(ctx context.Context, product Product) error {
	m.AddCall(ctx, product)
	return m.SaveProductFunc(ctx, product)
}

func (m *MockService) HandleEvent(ctx context.Context, event Event) error {
	m.AddCall(ctx, event)
	return m.HandleEventFunc(ctx, event)
}
