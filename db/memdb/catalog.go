package memdb

import (
	"context"

	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/catalog"
)

func (db *DB) StoreExists(_ context.Context, id int64, options ...core.QueryOptions) (ok bool, err error) {
	err = db.read(options, func(s *state) error {
		_, ok = s.stores[id]
		return nil
	})
	return ok, err
}

func (db *DB) ProductExists(_ context.Context, id int64, options ...core.QueryOptions) (ok bool, err error) {
	err = db.read(options, func(s *state) error {
		_, ok = s.products[id]
		return nil
	})
	return ok, err
}

func (db *DB) SaveStore(_ context.Context, store catalog.Store, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		s.stores[store.ID] = store
		return nil
	})
}

func (db *DB) SaveProduct(_ context.Context, product catalog.Product, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		s.products[product.ID] = product
		return nil
	})
}
