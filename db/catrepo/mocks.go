package catrepo

import (
	"context"

	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/test"
)

type MockRepo struct {
	StoreExistsFunc   func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	ProductExistsFunc func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	SaveStoreFunc     func(ctx context.Context, store catalog.Store, options ...core.UpdateOptions) error
	SaveProductFunc   func(ctx context.Context, product catalog.Product, options ...core.UpdateOptions) error
	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		StoreExistsFunc:   func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) { return true, nil },
		ProductExistsFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) { return true, nil },
		SaveStoreFunc:     func(ctx context.Context, store catalog.Store, options ...core.UpdateOptions) error { return nil },
		SaveProductFunc:   func(ctx context.Context, product catalog.Product, options ...core.UpdateOptions) error { return nil },
		CallWatcher:       test.NewCallWatcher(),
	}
}

func (r *MockRepo) StoreExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, id, options)
	return r.StoreExistsFunc(ctx, id, options...)
}

func (r *MockRepo) ProductExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, id, options)
	return r.ProductExistsFunc(ctx, id, options...)
}

func (r *MockRepo) SaveStore(ctx context.Context, store catalog.Store, options ...core.UpdateOptions) error {
	r.AddCall(ctx, store, options)
	return r.SaveStoreFunc(ctx, store, options...)
}

func (r *MockRepo) SaveProduct(ctx context.Context, product catalog.Product, options ...core.UpdateOptions) error {
	r.AddCall(ctx, product, options)
	return r.SaveProductFunc(ctx, product, options...)
}
