package fulfilrepo

import (
	"context"

	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/db"
	"github.com/sksmith/fulfilment/test"
)

type MockRepo struct {
	GetAssignmentFunc                            func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error)
	CountDistinctWarehousesByStoreAndProductFunc func(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error)
	CountDistinctWarehousesByStoreFunc           func(ctx context.Context, storeID int64, options ...core.QueryOptions) (int64, error)
	IsWarehouseUsedForStoreFunc                  func(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error)
	CountDistinctProductsByWarehouseFunc         func(ctx context.Context, warehouseID int64, options ...core.QueryOptions) (int64, error)
	ListByStoreFunc                              func(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error)
	ListByWarehouseFunc                          func(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error)
	SaveAssignmentFunc                           func(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error
	DeleteAssignmentFunc                         func(ctx context.Context, id int64, options ...core.UpdateOptions) error
	LockFunc                                     func(ctx context.Context, keys []string, options ...core.UpdateOptions) error
	BeginTransactionFunc                         func(ctx context.Context) (core.Transaction, error)
	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetAssignmentFunc: func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
			return fulfilment.Assignment{}, core.ErrNotFound
		},
		CountDistinctWarehousesByStoreAndProductFunc: func(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error) {
			return 0, nil
		},
		CountDistinctWarehousesByStoreFunc: func(ctx context.Context, storeID int64, options ...core.QueryOptions) (int64, error) {
			return 0, nil
		},
		IsWarehouseUsedForStoreFunc: func(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error) {
			return false, nil
		},
		CountDistinctProductsByWarehouseFunc: func(ctx context.Context, warehouseID int64, options ...core.QueryOptions) (int64, error) {
			return 0, nil
		},
		ListByStoreFunc: func(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
			return []fulfilment.Assignment{}, nil
		},
		ListByWarehouseFunc: func(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
			return []fulfilment.Assignment{}, nil
		},
		SaveAssignmentFunc: func(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error {
			a.ID = 1
			return nil
		},
		DeleteAssignmentFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error { return nil },
		LockFunc:             func(ctx context.Context, keys []string, options ...core.UpdateOptions) error { return nil },
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetAssignment(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
	r.AddCall(ctx, storeID, productID, warehouseID, options)
	return r.GetAssignmentFunc(ctx, storeID, productID, warehouseID, options...)
}

func (r *MockRepo) CountDistinctWarehousesByStoreAndProduct(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error) {
	r.AddCall(ctx, storeID, productID, options)
	return r.CountDistinctWarehousesByStoreAndProductFunc(ctx, storeID, productID, options...)
}

func (r *MockRepo) CountDistinctWarehousesByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) (int64, error) {
	r.AddCall(ctx, storeID, options)
	return r.CountDistinctWarehousesByStoreFunc(ctx, storeID, options...)
}

func (r *MockRepo) IsWarehouseUsedForStore(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, storeID, warehouseID, options)
	return r.IsWarehouseUsedForStoreFunc(ctx, storeID, warehouseID, options...)
}

func (r *MockRepo) CountDistinctProductsByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) (int64, error) {
	r.AddCall(ctx, warehouseID, options)
	return r.CountDistinctProductsByWarehouseFunc(ctx, warehouseID, options...)
}

func (r *MockRepo) ListByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
	r.AddCall(ctx, storeID, options)
	return r.ListByStoreFunc(ctx, storeID, options...)
}

func (r *MockRepo) ListByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
	r.AddCall(ctx, warehouseID, options)
	return r.ListByWarehouseFunc(ctx, warehouseID, options...)
}

func (r *MockRepo) SaveAssignment(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error {
	r.AddCall(ctx, *a, options)
	return r.SaveAssignmentFunc(ctx, a, options...)
}

func (r *MockRepo) DeleteAssignment(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteAssignmentFunc(ctx, id, options...)
}

func (r *MockRepo) Lock(ctx context.Context, keys []string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, keys, options)
	return r.LockFunc(ctx, keys, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}
