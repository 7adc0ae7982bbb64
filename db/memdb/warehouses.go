package memdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/warehouse"
)

var ErrDuplicateActiveCode = errors.New("an active warehouse with this business unit code already exists")

func copyWarehouse(w warehouse.Warehouse) warehouse.Warehouse {
	if w.Archived != nil {
		a := *w.Archived
		w.Archived = &a
	}
	return w
}

func (db *DB) GetActiveByBusinessUnitCode(_ context.Context, code string, options ...core.QueryOptions) (wh warehouse.Warehouse, err error) {
	err = db.read(options, func(s *state) error {
		for _, w := range s.warehouses {
			if w.BusinessUnitCode == code && w.Active() {
				wh = copyWarehouse(w)
				return nil
			}
		}
		return core.ErrNotFound
	})
	return wh, err
}

func (db *DB) GetWarehouse(_ context.Context, id int64, options ...core.QueryOptions) (wh warehouse.Warehouse, err error) {
	err = db.read(options, func(s *state) error {
		w, ok := s.warehouses[id]
		if !ok {
			return core.ErrNotFound
		}
		wh = copyWarehouse(w)
		return nil
	})
	return wh, err
}

func (db *DB) GetAllWarehouses(_ context.Context, options ...core.QueryOptions) (whs []warehouse.Warehouse, err error) {
	err = db.read(options, func(s *state) error {
		whs = make([]warehouse.Warehouse, 0, len(s.warehouses))
		for _, w := range s.warehouses {
			whs = append(whs, copyWarehouse(w))
		}
		sort.Slice(whs, func(i, j int) bool { return whs[i].ID < whs[j].ID })
		return nil
	})
	return whs, err
}

func (db *DB) CountActiveByLocation(_ context.Context, location string, options ...core.QueryOptions) (n int64, err error) {
	err = db.read(options, func(s *state) error {
		for _, w := range s.warehouses {
			if w.Location == location && w.Active() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (db *DB) TotalCapacityByLocation(_ context.Context, location string, options ...core.QueryOptions) (total int64, err error) {
	err = db.read(options, func(s *state) error {
		for _, w := range s.warehouses {
			if w.Location == location && w.Active() {
				total += w.Capacity
			}
		}
		return nil
	})
	return total, err
}

func (db *DB) CreateWarehouse(_ context.Context, wh *warehouse.Warehouse, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		if wh.Active() && activeCodeTaken(s, wh.BusinessUnitCode, 0) {
			return ErrDuplicateActiveCode
		}
		wh.ID = s.nextWarehouseID
		s.nextWarehouseID++
		s.warehouses[wh.ID] = copyWarehouse(*wh)
		return nil
	})
}

func (db *DB) UpdateWarehouse(_ context.Context, wh warehouse.Warehouse, options ...core.UpdateOptions) error {
	return db.write(options, func(s *state) error {
		if _, ok := s.warehouses[wh.ID]; !ok {
			return core.ErrNotFound
		}
		if wh.Active() && activeCodeTaken(s, wh.BusinessUnitCode, wh.ID) {
			return ErrDuplicateActiveCode
		}
		s.warehouses[wh.ID] = copyWarehouse(wh)
		return nil
	})
}

func activeCodeTaken(s *state, code string, exceptID int64) bool {
	for id, w := range s.warehouses {
		if id != exceptID && w.BusinessUnitCode == code && w.Active() {
			return true
		}
	}
	return false
}
