package warehouse

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
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

	GetActiveByBusinessUnitCode(ctx context.Context, code string, options ...core.QueryOptions) (Warehouse, error)
	GetWarehouse(ctx context.Context, id int64, options ...core.QueryOptions) (Warehouse, error)
	GetAllWarehouses(ctx context.Context, options ...core.QueryOptions) ([]Warehouse, error)
	CountActiveByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error)
	TotalCapacityByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error)

	CreateWarehouse(ctx context.Context, warehouse *Warehouse, options ...core.UpdateOptions) error
	UpdateWarehouse(ctx context.Context, warehouse Warehouse, options ...core.UpdateOptions) error

	// Lock serialises transactions sharing any of the given scope keys until
	// the transaction in options ends.
	Lock(ctx context.Context, keys []string, options ...core.UpdateOptions) error
}

type Queue interface {
	PublishWarehouse(ctx context.Context, event Event) error
}

func BusinessUnitKey(code string) string {
	return "bu:" + code
}

func LocationKey(location string) string {
	return "location:" + location
}
