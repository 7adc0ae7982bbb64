package fulfilment

import (
	"context"

	"github.com/sksmith/fulfilment/test"
)

type MockService struct {
	AssignFunc          func(ctx context.Context, storeID, productID, warehouseID int64) (Assignment, error)
	UnassignFunc        func(ctx context.Context, storeID, productID, warehouseID int64) error
	ListByStoreFunc     func(ctx context.Context, storeID int64) ([]Assignment, error)
	ListByWarehouseFunc func(ctx context.Context, warehouseID int64) ([]Assignment, error)
	*test.CallWatcher
}

func NewMockService() *MockService {
	return &MockService{
		AssignFunc: func(ctx context.Context, storeID, productID, warehouseID int64) (Assignment, error) {
			return Assignment{ID: 1, StoreID: storeID, ProductID: productID, WarehouseID: warehouseID}, nil
		},
		UnassignFunc:        func(ctx context.Context, storeID, productID, warehouseID int64) error { return nil },
		ListByStoreFunc:     func(ctx context.Context, storeID int64) ([]Assignment, error) { return []Assignment{}, nil },
		ListByWarehouseFunc: func(ctx context.Context, warehouseID int64) ([]Assignment, error) { return []Assignment{}, nil },
		CallWatcher:         test.NewCallWatcher(),
	}
}

func (m *MockService) Assign(ctx context.Context, storeID, productID, warehouseID int64) (Assignment, error) {
	m.AddCall(ctx, storeID, productID, warehouseID)
	return m.AssignFunc(ctx, storeID, productID, warehouseID)
}

func (m *MockService) Unassign(ctx context.Context, storeID, productID, warehouseID int64) error {
	m.AddCall(ctx, storeID, productID, warehouseID)
	return m.UnassignFunc(ctx, storeID, productID, warehouseID)
}

func (m *MockService) ListByStore(ctx context.Context, storeID int64) ([]Assignment, error) {
	m.AddCall(ctx, storeID)
	return m.ListByStoreFunc(ctx, storeID)
}

func (m *MockService) ListByWarehouse(ctx context.Context, warehouseID int64) ([]Assignment, error) {
	m.AddCall(ctx, warehouseID)
	return m.ListByWarehouseFunc(ctx, warehouseID)
}

type MockQueue struct {
	PublishFulfilmentFunc func(ctx context.Context, event Event) error
	*test.CallWatcher
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		PublishFulfilmentFunc: func(ctx context.Context, event Event) error { return nil },
		CallWatcher:           test.NewCallWatcher(),
	}
}

func (m *MockQueue) PublishFulfilment(ctx context.Context, event Event) error {
	m.AddCall(ctx, event)
	return m.PublishFulfilmentFunc(ctx, event)
}
