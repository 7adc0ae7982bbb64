package fulfilment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
)

func (s *service) checkStoreExists(ctx context.Context, tx core.Transaction, a Assignment) error {
	ok, err := s.catalog.StoreExists(ctx, a.StoreID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return core.NewError(core.KindStoreNotFound, "store not found: %d", a.StoreID)
	}
	return nil
}

func (s *service) checkProductExists(ctx context.Context, tx core.Transaction, a Assignment) error {
	ok, err := s.catalog.ProductExists(ctx, a.ProductID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return core.NewError(core.KindProductNotFound, "product not found: %d", a.ProductID)
	}
	return nil
}

// checkWarehouseAssignable holds the warehouse row until commit so an
// archival cannot slip in between the check and the insert.
func (s *service) checkWarehouseAssignable(ctx context.Context, tx core.Transaction, a Assignment) error {
	wh, err := s.warehouses.GetWarehouse(ctx, a.WarehouseID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NewError(core.KindWarehouseNotFound, "warehouse not found: %d", a.WarehouseID)
		}
		return errors.WithStack(err)
	}
	if !wh.Active() {
		return core.NewError(core.KindArchivedWarehouse, "cannot assign archived warehouse: %d", a.WarehouseID)
	}
	return nil
}

func (s *service) checkProductPerStoreLimit(ctx context.Context, tx core.Transaction, a Assignment) error {
	n, err := s.repo.CountDistinctWarehousesByStoreAndProduct(ctx, a.StoreID, a.ProductID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if n >= MaxWarehousesPerProductPerStore {
		return core.NewError(core.KindProductPerStoreLimit,
			"product can be fulfilled by at most %d warehouses per store", MaxWarehousesPerProductPerStore)
	}
	return nil
}

// checkStoreLimit lets a warehouse the store already uses take another
// product, since that adds no new warehouse to the store.
func (s *service) checkStoreLimit(ctx context.Context, tx core.Transaction, a Assignment) error {
	n, err := s.repo.CountDistinctWarehousesByStore(ctx, a.StoreID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if n < MaxWarehousesPerStore {
		return nil
	}
	used, err := s.repo.IsWarehouseUsedForStore(ctx, a.StoreID, a.WarehouseID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if !used {
		return core.NewError(core.KindStorePerWarehouseLimit,
			"store can be fulfilled by at most %d warehouses", MaxWarehousesPerStore)
	}
	return nil
}

func (s *service) checkWarehouseLimit(ctx context.Context, tx core.Transaction, a Assignment) error {
	n, err := s.repo.CountDistinctProductsByWarehouse(ctx, a.WarehouseID, core.QueryOptions{Tx: tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if n >= MaxProductsPerWarehouse {
		return core.NewError(core.KindWarehouseProductLimit,
			"warehouse can store at most %d product types", MaxProductsPerWarehouse)
	}
	return nil
}
