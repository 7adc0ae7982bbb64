package fulfilment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/sksmith/fulfilment/core/fulfilment")

type Service interface {
	Assign(ctx context.Context, storeID, productID, warehouseID int64) (Assignment, error)
	Unassign(ctx context.Context, storeID, productID, warehouseID int64) error
	ListByStore(ctx context.Context, storeID int64) ([]Assignment, error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]Assignment, error)
}

func NewService(repo Repository, catalog Catalog, warehouses Warehouses, q Queue) *service {
	return &service{
		repo:       repo,
		catalog:    catalog,
		warehouses: warehouses,
		queue:      q,
	}
}

type service struct {
	repo       Repository
	catalog    Catalog
	warehouses Warehouses
	queue      Queue
}

type rule func(ctx context.Context, tx core.Transaction, a Assignment) error

func evaluate(ctx context.Context, tx core.Transaction, a Assignment, rules ...rule) error {
	for _, r := range rules {
		if err := r(ctx, tx, a); err != nil {
			return err
		}
	}
	return nil
}

// Assign is idempotent. Assigning an existing triple returns the stored
// assignment without re-checking the limits.
func (s *service) Assign(ctx context.Context, storeID, productID, warehouseID int64) (a Assignment, err error) {
	const funcName = "Assign"

	ctx, span := tracer.Start(ctx, "fulfilment.Assign", spanAttributes(storeID, productID, warehouseID))
	defer func() { core.EndSpan(span, err) }()

	log.Info().
		Str("func", funcName).
		Int64("storeId", storeID).
		Int64("productId", productID).
		Int64("warehouseId", warehouseID).
		Msg("assigning warehouse")

	if storeID <= 0 || productID <= 0 || warehouseID <= 0 {
		return Assignment{}, core.NewError(core.KindMissingIdentifiers, "store, product and warehouse identifiers are required")
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Assignment{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	if err = s.lock(ctx, tx, storeID, warehouseID); err != nil {
		return Assignment{}, err
	}

	a = Assignment{StoreID: storeID, ProductID: productID, WarehouseID: warehouseID}

	err = evaluate(ctx, tx, a,
		s.checkStoreExists,
		s.checkProductExists,
		s.checkWarehouseAssignable,
	)
	if err != nil {
		return Assignment{}, err
	}

	existing, err := s.repo.GetAssignment(ctx, storeID, productID, warehouseID, core.QueryOptions{Tx: tx})
	if err == nil {
		log.Debug().
			Str("func", funcName).
			Int64("id", existing.ID).
			Msg("assignment already exists")
		if err = tx.Commit(ctx); err != nil {
			return Assignment{}, errors.WithStack(err)
		}
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return Assignment{}, errors.WithStack(err)
	}

	err = evaluate(ctx, tx, a,
		s.checkProductPerStoreLimit,
		s.checkStoreLimit,
		s.checkWarehouseLimit,
	)
	if err != nil {
		return Assignment{}, err
	}

	if err = s.repo.SaveAssignment(ctx, &a, core.UpdateOptions{Tx: tx}); err != nil {
		return Assignment{}, errors.WithMessage(err, "failed to save assignment")
	}

	if err = tx.Commit(ctx); err != nil {
		return Assignment{}, errors.WithMessage(err, "failed to commit assignment")
	}

	log.Info().
		Str("func", funcName).
		Int64("id", a.ID).
		Msg("warehouse assigned")

	s.publish(ctx, Event{Type: Assigned, Assignment: a})
	return a, nil
}

// Unassign is idempotent. Removing a triple that was never assigned succeeds.
func (s *service) Unassign(ctx context.Context, storeID, productID, warehouseID int64) (err error) {
	const funcName = "Unassign"

	ctx, span := tracer.Start(ctx, "fulfilment.Unassign", spanAttributes(storeID, productID, warehouseID))
	defer func() { core.EndSpan(span, err) }()

	log.Info().
		Str("func", funcName).
		Int64("storeId", storeID).
		Int64("productId", productID).
		Int64("warehouseId", warehouseID).
		Msg("unassigning warehouse")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	if err = s.lock(ctx, tx, storeID, warehouseID); err != nil {
		return err
	}

	existing, err := s.repo.GetAssignment(ctx, storeID, productID, warehouseID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return errors.WithStack(err)
		}
		log.Debug().Str("func", funcName).Msg("assignment does not exist")
		if err = tx.Commit(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	if err = s.repo.DeleteAssignment(ctx, existing.ID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete assignment")
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit unassignment")
	}

	log.Info().
		Str("func", funcName).
		Int64("id", existing.ID).
		Msg("warehouse unassigned")

	s.publish(ctx, Event{Type: Unassigned, Assignment: existing})
	return nil
}

func (s *service) ListByStore(ctx context.Context, storeID int64) ([]Assignment, error) {
	as, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return as, nil
}

func (s *service) ListByWarehouse(ctx context.Context, warehouseID int64) ([]Assignment, error) {
	as, err := s.repo.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return as, nil
}

func (s *service) lock(ctx context.Context, tx core.Transaction, storeID, warehouseID int64) error {
	keys := []string{StoreKey(storeID), WarehouseKey(warehouseID)}
	if err := s.repo.Lock(ctx, keys, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to lock fulfilment scope")
	}
	return nil
}

func (s *service) publish(ctx context.Context, event Event) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishFulfilment(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("type", string(event.Type)).
			Int64("storeId", event.Assignment.StoreID).
			Msg("failed to publish fulfilment event")
	}
}

func spanAttributes(storeID, productID, warehouseID int64) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.Int64("fulfilment.store_id", storeID),
		attribute.Int64("fulfilment.product_id", productID),
		attribute.Int64("fulfilment.warehouse_id", warehouseID),
	)
}
