package warehouse

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
)

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.BusinessUnitCode) == "":
		return invalid("business unit code is required")
	case strings.TrimSpace(req.Location) == "":
		return invalid("location is required")
	case req.Capacity == nil:
		return invalid("capacity is required")
	case req.Stock == nil:
		return invalid("stock is required")
	case *req.Capacity <= 0:
		return invalid("capacity must be positive")
	case *req.Stock < 0:
		return invalid("stock cannot be negative")
	}
	return nil
}

func invalid(msg string) error {
	return core.NewError(core.KindInvalidInput, "%s", msg)
}

func (s *service) checkCodeAvailable(ctx context.Context, c *candidate) error {
	_, err := s.repo.GetActiveByBusinessUnitCode(ctx, c.code, core.QueryOptions{Tx: c.tx})
	if err == nil {
		return core.NewError(core.KindDuplicateCode, "business unit code already exists: %s", c.code)
	}
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return errors.WithStack(err)
}

func (s *service) loadCurrent(ctx context.Context, c *candidate) error {
	current, err := s.repo.GetActiveByBusinessUnitCode(ctx, c.code, core.QueryOptions{Tx: c.tx, ForUpdate: true})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NewError(core.KindWarehouseNotFound, "warehouse not found with business unit code: %s", c.code)
		}
		return errors.WithStack(err)
	}
	c.current = current
	return nil
}

func (s *service) resolveLocation(ctx context.Context, c *candidate) error {
	l, err := s.dir.Resolve(ctx, c.location)
	if err != nil {
		return err
	}
	c.resolved = l
	return nil
}

func (s *service) checkSlotAvailable(ctx context.Context, c *candidate) error {
	count, err := s.repo.CountActiveByLocation(ctx, c.location, core.QueryOptions{Tx: c.tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if count >= c.resolved.MaxNumberOfWarehouses {
		return maxWarehousesReached(c.location)
	}
	return nil
}

func (s *service) checkCapacityAvailable(ctx context.Context, c *candidate) error {
	total, err := s.repo.TotalCapacityByLocation(ctx, c.location, core.QueryOptions{Tx: c.tx})
	if err != nil {
		return errors.WithStack(err)
	}
	return fitsLocation(c.capacity, total, c.resolved.MaxCapacity)
}

// checkReplacementSlot tolerates the slot held by the warehouse being
// replaced when it stays at the same location.
func (s *service) checkReplacementSlot(ctx context.Context, c *candidate) error {
	count, err := s.repo.CountActiveByLocation(ctx, c.location, core.QueryOptions{Tx: c.tx})
	if err != nil {
		return errors.WithStack(err)
	}
	limit := c.resolved.MaxNumberOfWarehouses
	if c.sameLocation() {
		if count > limit {
			return maxWarehousesReached(c.location)
		}
		return nil
	}
	if count >= limit {
		return maxWarehousesReached(c.location)
	}
	return nil
}

func (s *service) checkReplacementCapacity(ctx context.Context, c *candidate) error {
	total, err := s.repo.TotalCapacityByLocation(ctx, c.location, core.QueryOptions{Tx: c.tx})
	if err != nil {
		return errors.WithStack(err)
	}
	if c.sameLocation() {
		total -= c.current.Capacity
	}
	return fitsLocation(c.capacity, total, c.resolved.MaxCapacity)
}

func checkCarriesStock(_ context.Context, c *candidate) error {
	if c.capacity < c.current.Stock {
		return core.NewError(core.KindInsufficientCapacity,
			"capacity %d cannot accommodate current stock %d", c.capacity, c.current.Stock)
	}
	return nil
}

func checkStockUnchanged(_ context.Context, c *candidate) error {
	if c.stock != c.current.Stock {
		return core.NewError(core.KindStockMismatch,
			"stock %d does not match current stock %d", c.stock, c.current.Stock)
	}
	return nil
}

// checkStockWithinCapacity cannot fail for a replacement that passed the
// stock rules above. It stays in the chain in case those rules are relaxed.
func checkStockWithinCapacity(_ context.Context, c *candidate) error {
	if c.stock > c.capacity {
		return core.NewError(core.KindCapacityExceeded,
			"stock %d exceeds warehouse capacity %d", c.stock, c.capacity)
	}
	return nil
}

func (c *candidate) sameLocation() bool {
	return c.location == c.current.Location
}

func maxWarehousesReached(location string) error {
	return core.NewError(core.KindMaxWarehousesReached, "maximum number of warehouses reached for location: %s", location)
}

// fitsLocation compares against the remaining room. capacity may be as
// large as MaxInt64, so it is never added to used.
func fitsLocation(capacity, used, limit int64) error {
	if capacity > limit-used {
		return core.NewError(core.KindCapacityExceeded,
			"capacity %d exceeds remaining location capacity %d of %d", capacity, limit-used, limit)
	}
	return nil
}
