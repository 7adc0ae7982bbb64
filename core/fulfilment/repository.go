package fulfilment

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/warehouse"
)

func rollback(ctx context.Context, tx core.Transaction, err error) {
	if tx == nil {
		return
	}
	e := tx.Rollback(ctx)
	if e != nil {
		log.Warn().Err(e).AnErr("cause", err).Msg("failed to rollback")
	}
}

type Repository interface {
	core.Transactional

	GetAssignment(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (Assignment, error)
	CountDistinctWarehousesByStoreAndProduct(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error)
	CountDistinctWarehousesByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) (int64, error)
	IsWarehouseUsedForStore(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error)
	CountDistinctProductsByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) (int64, error)
	ListByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]Assignment, error)
	ListByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]Assignment, error)

	SaveAssignment(ctx context.Context, assignment *Assignment, options ...core.UpdateOptions) error
	DeleteAssignment(ctx context.Context, id int64, options ...core.UpdateOptions) error

	Lock(ctx context.Context, keys []string, options ...core.UpdateOptions) error
}

// Catalog answers whether the stores and products owned by other systems exist.
type Catalog interface {
	StoreExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	ProductExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
}

type Warehouses interface {
	GetWarehouse(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error)
}

type Queue interface {
	PublishFulfilment(ctx context.Context, event Event) error
}

func StoreKey(id int64) string {
	return "store:" + strconv.FormatInt(id, 10)
}

func WarehouseKey(id int64) string {
	return "warehouse:" + strconv.FormatInt(id, 10)
}
