package memdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/fulfilment"
)

var ErrDuplicateAssignment = errors.New("assignment already exists")

func (db *DB) GetAssignment(_ context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (a fulfilment.Assignment, err error) {
	err = db.read(options, func(s *state) error {
		for _, v := range s.assignments {
			if v.StoreID == storeID && v.ProductID == productID && v.WarehouseID == warehouseID {
				a = v
				return nil
			}
		}
		return core.ErrNotFound
	})
	return a, err
}

func (db *DB) CountDistinctWarehousesByStoreAndProduct(_ context.Context, storeID, productID int64, options ...core.QueryOptions) (n int64, err error) {
	err = db.read(options, func(s *state) error {
		n = distinct(s, func(a fulfilment.Assignment) (int64, bool) {
			return a.WarehouseID, a.StoreID == storeID && a.ProductID == productID
		})
		return nil
	})
	return n, err
}

func (db *DB) CountDistinctWarehousesByStore(_ context.Context, storeID int64, options ...core.QueryOptions) (n int64, err error) {
	err = db.read(options, func(s *state) error {
		n = distinct(s, func(a fulfilment.Assignment) (int64, bool) {
			return a.WarehouseID, a.StoreID == storeID
		})
		return nil
	})
	return n, err
}

func (db *DB) IsWarehouseUsedForStore(_ context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (used bool, err error) {
	err = db.read(options, func(s *state) error {
		for _, a := range s.assignments {
			if a.StoreID == storeID && a.WarehouseID == warehouseID {
				used = true
				return nil
			}
		}
		return nil
	})
	return used, err
}

func (db *DB) CountDistinctProductsByWarehouse(_ context.Context, warehouseID int64, options ...core.QueryOptions) (n int64, err error) {
	err = db.read(options, func(s *state) error {
		n = distinct(s, func(a fulfilment.Assignment) (int64, bool) {
			return a.ProductID, a.WarehouseID == warehouseID
		})
		return nil
	})
	return n, err
}

func (db *DB) ListByStore(_ context.Context, storeID int64, options ...core.QueryOptions) (as []fulfilment.Assignment, err error) {
	err = db.read(options, func(s *state) error {
		as = list(s, func(a fulfilment.Assignment) bool { return a.StoreID == storeID })
		return nil
	})
	return as, err
}

func (db *DB) ListByWarehouse(_ context.Context, warehouseID int64, options ...core.QueryOptions) (as []fulfilment.Assignment, err error) {
	err = db.read(options, func(s *state) error {
		as = list(s, func(a fulfilment.Assignment) bool { return a.WarehouseID == warehouseID })
		return nil
	})
	return as, err
}

func (db *DB) SaveAssignment(_ context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		for _, v := range s.assignments {
			if v.StoreID == a.StoreID && v.ProductID == a.ProductID && v.WarehouseID == a.WarehouseID {
				return ErrDuplicateAssignment
			}
		}
		a.ID = s.nextAssignmentID
		s.nextAssignmentID++
		s.assignments[a.ID] = *a
		return nil
	})
}

func (db *DB) DeleteAssignment(_ context.Context, id int64, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		if _, ok := s.assignments[id]; !ok {
			return core.ErrNotFound
		}
		delete(s.assignments, id)
		return nil
	})
}

func distinct(s *state, key func(a fulfilment.Assignment) (int64, bool)) int64 {
	seen := make(map[int64]struct{})
	for _, a := range s.assignments {
		if k, ok := key(a); ok {
			seen[k] = struct{}{}
		}
	}
	return int64(len(seen))
}

func list(s *state, match func(a fulfilment.Assignment) bool) []fulfilment.Assignment {
	as := make([]fulfilment.Assignment, 0)
	for _, a := range s.assignments {
		if match(a) {
			as = append(as, a)
		}
	}
	sort.Slice(as, func(i, j int) bool { return as[i].ID < as[j].ID })
	return as
}
