package whrepo

import (
	"context"

	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/db"
	"github.com/sksmith/fulfilment/test"
)

type MockRepo struct {
	GetActiveByBusinessUnitCodeFunc func(ctx context.Context, code string, options ...core.QueryOptions) (warehouse.Warehouse, error)
	GetWarehouseFunc                func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error)
	GetAllWarehousesFunc            func(ctx context.Context, options ...core.QueryOptions) ([]warehouse.Warehouse, error)
	CountActiveByLocationFunc       func(ctx context.Context, location string, options ...core.QueryOptions) (int64, error)
	TotalCapacityByLocationFunc     func(ctx context.Context, location string, options ...core.QueryOptions) (int64, error)
	CreateWarehouseFunc             func(ctx context.Context, wh *warehouse.Warehouse, options ...core.UpdateOptions) error
	UpdateWarehouseFunc             func(ctx context.Context, wh warehouse.Warehouse, options ...core.UpdateOptions) error
	LockFunc                        func(ctx context.Context, keys []string, options ...core.UpdateOptions) error
	BeginTransactionFunc            func(ctx context.Context) (core.Transaction, error)
	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetActiveByBusinessUnitCodeFunc: func(ctx context.Context, code string, options ...core.QueryOptions) (warehouse.Warehouse, error) {
			return warehouse.Warehouse{}, core.ErrNotFound
		},
		GetWarehouseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
			return warehouse.Warehouse{}, core.ErrNotFound
		},
		GetAllWarehousesFunc: func(ctx context.Context, options ...core.QueryOptions) ([]warehouse.Warehouse, error) {
			return []warehouse.Warehouse{}, nil
		},
		CountActiveByLocationFunc: func(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
			return 0, nil
		},
		TotalCapacityByLocationFunc: func(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
			return 0, nil
		},
		CreateWarehouseFunc: func(ctx context.Context, wh *warehouse.Warehouse, options ...core.UpdateOptions) error {
			wh.ID = 1
			return nil
		},
		UpdateWarehouseFunc: func(ctx context.Context, wh warehouse.Warehouse, options ...core.UpdateOptions) error { return nil },
		LockFunc:            func(ctx context.Context, keys []string, options ...core.UpdateOptions) error { return nil },
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetActiveByBusinessUnitCode(ctx context.Context, code string, options ...core.QueryOptions) (warehouse.Warehouse, error) {
	r.AddCall(ctx, code, options)
	return r.GetActiveByBusinessUnitCodeFunc(ctx, code, options...)
}

func (r *MockRepo) GetWarehouse(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
	r.AddCall(ctx, id, options)
	return r.GetWarehouseFunc(ctx, id, options...)
}

func (r *MockRepo) GetAllWarehouses(ctx context.Context, options ...core.QueryOptions) ([]warehouse.Warehouse, error) {
	r.AddCall(ctx, options)
	return r.GetAllWarehousesFunc(ctx, options...)
}

func (r *MockRepo) CountActiveByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
	r.AddCall(ctx, location, options)
	return r.CountActiveByLocationFunc(ctx, location, options...)
}

func (r *MockRepo) TotalCapacityByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
	r.AddCall(ctx, location, options)
	return r.TotalCapacityByLocationFunc(ctx, location, options...)
}

func (r *MockRepo) CreateWarehouse(ctx context.Context, wh *warehouse.Warehouse, options ...core.UpdateOptions) error {
	r.AddCall(ctx, *wh, options)
	return r.CreateWarehouseFunc(ctx, wh, options...)
}

func (r *MockRepo) UpdateWarehouse(ctx context.Context, wh warehouse.Warehouse, options ...core.UpdateOptions) error {
	r.AddCall(ctx, wh, options)
	return r.UpdateWarehouseFunc(ctx, wh, options...)
}

func (r *MockRepo) Lock(ctx context.Context, keys []string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, keys, options)
	return r.LockFunc(ctx, keys, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}
