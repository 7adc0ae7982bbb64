package warehouse

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/location"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/sksmith/fulfilment/core/warehouse")

type Service interface {
	Create(ctx context.Context, req Request) (Warehouse, error)
	Replace(ctx context.Context, req Request) (Warehouse, error)
	Archive(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	ArchiveByID(ctx context.Context, id int64) (Warehouse, error)

	GetWarehouse(ctx context.Context, id int64) (Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]Warehouse, error)
}

type Option func(s *service)

// WithClock overrides the source of creation and archival timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(repo Repository, dir location.Directory, q Queue, options ...Option) *service {
	s := &service{
		repo:  repo,
		dir:   dir,
		queue: q,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

type service struct {
	repo  Repository
	dir   location.Directory
	queue Queue
	now   func() time.Time
}

// candidate is the state shared by the rules of one Create or Replace.
type candidate struct {
	tx       core.Transaction
	code     string
	location string
	capacity int64
	stock    int64

	current  Warehouse
	resolved location.Location
}

// rule is one step of an ordered validation chain. The first rule that
// returns an error rejects the operation.
type rule func(ctx context.Context, c *candidate) error

func evaluate(ctx context.Context, c *candidate, rules ...rule) error {
	for _, r := range rules {
		if err := r(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req Request) (wh Warehouse, err error) {
	const funcName = "Create"

	ctx, span := tracer.Start(ctx, "warehouse.Create", spanAttributes(req))
	defer func() { core.EndSpan(span, err) }()

	log.Info().
		Str("func", funcName).
		Str("businessUnitCode", req.BusinessUnitCode).
		Str("location", req.Location).
		Interface("capacity", req.Capacity).
		Interface("stock", req.Stock).
		Msg("creating warehouse")

	if err = validateRequest(req); err != nil {
		return Warehouse{}, err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Warehouse{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	c := newCandidate(tx, req)
	if err = s.lock(ctx, c); err != nil {
		return Warehouse{}, err
	}

	err = evaluate(ctx, c,
		s.checkCodeAvailable,
		s.resolveLocation,
		s.checkSlotAvailable,
		s.checkCapacityAvailable,
		checkStockWithinCapacity,
	)
	if err != nil {
		return Warehouse{}, err
	}

	wh = Warehouse{
		BusinessUnitCode: c.code,
		Location:         c.location,
		Capacity:         c.capacity,
		Stock:            c.stock,
		Created:          s.now(),
	}
	if err = s.repo.CreateWarehouse(ctx, &wh, core.UpdateOptions{Tx: tx}); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to create warehouse")
	}

	if err = tx.Commit(ctx); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to commit warehouse creation")
	}

	log.Info().
		Str("func", funcName).
		Str("businessUnitCode", wh.BusinessUnitCode).
		Int64("id", wh.ID).
		Msg("warehouse created")

	s.publish(ctx, Event{Type: Created, Warehouse: wh})
	return wh, nil
}

func (s *service) Replace(ctx context.Context, req Request) (wh Warehouse, err error) {
	const funcName = "Replace"

	ctx, span := tracer.Start(ctx, "warehouse.Replace", spanAttributes(req))
	defer func() { core.EndSpan(span, err) }()

	log.Info().
		Str("func", funcName).
		Str("businessUnitCode", req.BusinessUnitCode).
		Str("location", req.Location).
		Interface("capacity", req.Capacity).
		Interface("stock", req.Stock).
		Msg("replacing warehouse")

	if err = validateRequest(req); err != nil {
		return Warehouse{}, err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Warehouse{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	c := newCandidate(tx, req)
	if err = s.lockReplacement(ctx, c); err != nil {
		return Warehouse{}, err
	}

	err = evaluate(ctx, c,
		s.loadCurrent,
		checkCarriesStock,
		checkStockUnchanged,
		s.resolveLocation,
		s.checkReplacementSlot,
		s.checkReplacementCapacity,
		checkStockWithinCapacity,
	)
	if err != nil {
		return Warehouse{}, err
	}

	now := s.now()
	previous := c.current
	previous.Archived = &now
	if err = s.repo.UpdateWarehouse(ctx, previous, core.UpdateOptions{Tx: tx}); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to archive replaced warehouse")
	}

	wh = Warehouse{
		BusinessUnitCode: c.code,
		Location:         c.location,
		Capacity:         c.capacity,
		Stock:            c.stock,
		Created:          now,
	}
	if err = s.repo.CreateWarehouse(ctx, &wh, core.UpdateOptions{Tx: tx}); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to create replacement warehouse")
	}

	if err = tx.Commit(ctx); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to commit warehouse replacement")
	}

	log.Info().
		Str("func", funcName).
		Str("businessUnitCode", wh.BusinessUnitCode).
		Int64("previousId", previous.ID).
		Int64("id", wh.ID).
		Msg("warehouse replaced")

	s.publish(ctx, Event{Type: Replaced, Warehouse: wh, Previous: &previous})
	return wh, nil
}

// Archive is idempotent. Archiving an archived warehouse returns it unchanged.
func (s *service) Archive(ctx context.Context, warehouse Warehouse) (wh Warehouse, err error) {
	const funcName = "Archive"

	ctx, span := tracer.Start(ctx, "warehouse.Archive", trace.WithAttributes(
		attribute.String("warehouse.business_unit_code", warehouse.BusinessUnitCode),
		attribute.Int64("warehouse.id", warehouse.ID),
	))
	defer func() { core.EndSpan(span, err) }()

	if strings.TrimSpace(warehouse.BusinessUnitCode) == "" {
		return Warehouse{}, core.NewError(core.KindWarehouseNotFound, "warehouse not found: unknown business unit code")
	}

	if !warehouse.Active() {
		log.Debug().
			Str("func", funcName).
			Str("businessUnitCode", warehouse.BusinessUnitCode).
			Msg("warehouse already archived")
		return warehouse, nil
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Warehouse{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	wh, err = s.reload(ctx, tx, warehouse)
	if err != nil {
		return Warehouse{}, err
	}

	if !wh.Active() {
		log.Debug().
			Str("func", funcName).
			Str("businessUnitCode", wh.BusinessUnitCode).
			Msg("warehouse already archived")
		if err = tx.Commit(ctx); err != nil {
			return Warehouse{}, errors.WithStack(err)
		}
		return wh, nil
	}

	now := s.now()
	wh.Archived = &now
	if err = s.repo.UpdateWarehouse(ctx, wh, core.UpdateOptions{Tx: tx}); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to archive warehouse")
	}

	if err = tx.Commit(ctx); err != nil {
		return Warehouse{}, errors.WithMessage(err, "failed to commit warehouse archival")
	}

	log.Info().
		Str("func", funcName).
		Str("businessUnitCode", wh.BusinessUnitCode).
		Int64("id", wh.ID).
		Msg("warehouse archived")

	s.publish(ctx, Event{Type: Archived, Warehouse: wh})
	return wh, nil
}

func (s *service) ArchiveByID(ctx context.Context, id int64) (Warehouse, error) {
	wh, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return Warehouse{}, err
	}
	return s.Archive(ctx, wh)
}

func (s *service) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	const funcName = "GetWarehouse"

	log.Debug().
		Str("func", funcName).
		Int64("id", id).
		Msg("getting warehouse")

	wh, err := s.repo.GetWarehouse(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Warehouse{}, core.NewError(core.KindWarehouseNotFound, "warehouse not found with id: %d", id)
		}
		return Warehouse{}, errors.WithStack(err)
	}
	return wh, nil
}

func (s *service) GetAllWarehouses(ctx context.Context) ([]Warehouse, error) {
	whs, err := s.repo.GetAllWarehouses(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return whs, nil
}

// reload reads the stored version of warehouse under a row lock so a
// concurrent archive or replace is observed.
func (s *service) reload(ctx context.Context, tx core.Transaction, warehouse Warehouse) (Warehouse, error) {
	var (
		wh  Warehouse
		err error
	)
	if warehouse.ID != 0 {
		wh, err = s.repo.GetWarehouse(ctx, warehouse.ID, core.QueryOptions{Tx: tx, ForUpdate: true})
	} else {
		wh, err = s.repo.GetActiveByBusinessUnitCode(ctx, warehouse.BusinessUnitCode, core.QueryOptions{Tx: tx, ForUpdate: true})
	}
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Warehouse{}, core.NewError(core.KindWarehouseNotFound, "warehouse not found with business unit code: %s", warehouse.BusinessUnitCode)
		}
		return Warehouse{}, errors.WithStack(err)
	}
	return wh, nil
}

func (s *service) lock(ctx context.Context, c *candidate) error {
	return s.lockKeys(ctx, c.tx, BusinessUnitKey(c.code), LocationKey(c.location))
}

// lockReplacement also locks the location the current warehouse leaves. That
// location is peeked before any lock is held; loadCurrent re-reads the
// warehouse once the business unit is locked.
func (s *service) lockReplacement(ctx context.Context, c *candidate) error {
	keys := []string{BusinessUnitKey(c.code), LocationKey(c.location)}

	current, err := s.repo.GetActiveByBusinessUnitCode(ctx, c.code, core.QueryOptions{Tx: c.tx})
	switch {
	case err == nil:
		if current.Location != c.location {
			keys = append(keys, LocationKey(current.Location))
		}
	case !errors.Is(err, core.ErrNotFound):
		return errors.WithStack(err)
	}
	return s.lockKeys(ctx, c.tx, keys...)
}

func (s *service) lockKeys(ctx context.Context, tx core.Transaction, keys ...string) error {
	if err := s.repo.Lock(ctx, keys, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to lock warehouse scope")
	}
	return nil
}

func (s *service) publish(ctx context.Context, event Event) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishWarehouse(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("type", string(event.Type)).
			Str("businessUnitCode", event.Warehouse.BusinessUnitCode).
			Msg("failed to publish warehouse event")
	}
}

func newCandidate(tx core.Transaction, req Request) *candidate {
	return &candidate{
		tx:       tx,
		code:     req.BusinessUnitCode,
		location: req.Location,
		capacity: *req.Capacity,
		stock:    *req.Stock,
	}
}

func spanAttributes(req Request) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("warehouse.business_unit_code", req.BusinessUnitCode),
		attribute.String("warehouse.location", req.Location),
	)
}
