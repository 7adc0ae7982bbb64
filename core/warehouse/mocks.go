package warehouse

import (
	"context"

	"github.com/sksmith/fulfilment/test"
)

type MockService struct {
	CreateFunc           func(ctx context.Context, req Request) (Warehouse, error)
	ReplaceFunc          func(ctx context.Context, req Request) (Warehouse, error)
	ArchiveFunc          func(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	ArchiveByIDFunc      func(ctx context.Context, id int64) (Warehouse, error)
	GetWarehouseFunc     func(ctx context.Context, id int64) (Warehouse, error)
	GetAllWarehousesFunc func(ctx context.Context) ([]Warehouse, error)
	*test.CallWatcher
}

func NewMockService() *MockService {
	return &MockService{
		CreateFunc:           func(ctx context.Context, req Request) (Warehouse, error) { return Warehouse{}, nil },
		ReplaceFunc:          func(ctx context.Context, req Request) (Warehouse, error) { return Warehouse{}, nil },
		ArchiveFunc:          func(ctx context.Context, warehouse Warehouse) (Warehouse, error) { return warehouse, nil },
		ArchiveByIDFunc:      func(ctx context.Context, id int64) (Warehouse, error) { return Warehouse{ID: id}, nil },
		GetWarehouseFunc:     func(ctx context.Context, id int64) (Warehouse, error) { return Warehouse{ID: id}, nil },
		GetAllWarehousesFunc: func(ctx context.Context) ([]Warehouse, error) { return []Warehouse{}, nil },
		CallWatcher:          test.NewCallWatcher(),
	}
}

func (m *MockService) Create(ctx context.Context, req Request) (Warehouse, error) {
	m.AddCall(ctx, req)
	return m.CreateFunc(ctx, req)
}

func (m *MockService) Replace(ctx context.Context, req Request) (Warehouse, error) {
	m.AddCall(ctx, req)
	return m.ReplaceFunc(ctx, req)
}

func (m *MockService) Archive(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	m.AddCall(ctx, warehouse)
	return m.ArchiveFunc(ctx, warehouse)
}

func (m *MockService) ArchiveByID(ctx context.Context, id int64) (Warehouse, error) {
	m.AddCall(ctx, id)
	return m.ArchiveByIDFunc(ctx, id)
}

func (m *MockService) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	m.AddCall(ctx, id)
	return m.GetWarehouseFunc(ctx, id)
}

func (m *MockService) GetAllWarehouses(ctx context.Context) ([]Warehouse, error) {
	m.AddCall(ctx)
	return m.GetAllWarehousesFunc(ctx)
}

type MockQueue struct {
	PublishWarehouseFunc func(ctx context.Context, event Event) error
	*test.CallWatcher
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		PublishWarehouseFunc: func(ctx context.Context, event Event) error { return nil },
		CallWatcher:          test.NewCallWatcher(),
	}
}

func (m *MockQueue) PublishWarehouse(ctx context.Context, event Event) error {
	m.AddCall(ctx, event)
	return m.PublishWarehouseFunc(ctx, event)
}
