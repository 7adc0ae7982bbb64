package queue

import (
	"context"

	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/test"
)

// MockQueue stands in for the broker when rabbitmq.mock is set. It records
// events without sending them anywhere.
type MockQueue struct {
	PublishWarehouseFunc  func(ctx context.Context, event warehouse.Event) error
	PublishFulfilmentFunc func(ctx context.Context, event fulfilment.Event) error
	*test.CallWatcher
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		PublishWarehouseFunc:  func(ctx context.Context, event warehouse.Event) error { return nil },
		PublishFulfilmentFunc: func(ctx context.Context, event fulfilment.Event) error { return nil },
		CallWatcher:           test.NewCallWatcher(),
	}
}

func (m *MockQueue) PublishWarehouse(ctx context.Context, event warehouse.Event) error {
	m.AddCall(ctx, event)
	return m.PublishWarehouseFunc(ctx, event)
}

func (m *MockQueue) PublishFulfilment(ctx context.Context, event fulfilment.Event) error {
	m.AddCall(ctx, event)
	return m.PublishFulfilmentFunc(ctx, event)
}
