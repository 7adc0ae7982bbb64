// Package memdb is an in-process store implementing the warehouse,
// fulfilment and catalog repositories. A transaction holds the store's lock
// from BeginTransaction until Commit or Rollback, so transactions are fully
// serialised and Lock has nothing left to do.
package memdb

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
)

var ErrTxDone = errors.New("transaction has already been committed or rolled back")

type state struct {
	warehouses  map[int64]warehouse.Warehouse
	assignments map[int64]fulfilment.Assignment
	stores      map[int64]catalog.Store
	products    map[int64]catalog.Product

	nextWarehouseID  int64
	nextAssignmentID int64
}

func newState() *state {
	return &state{
		warehouses:       make(map[int64]warehouse.Warehouse),
		assignments:      make(map[int64]fulfilment.Assignment),
		stores:           make(map[int64]catalog.Store),
		products:         make(map[int64]catalog.Product),
		nextWarehouseID:  1,
		nextAssignmentID: 1,
	}
}

func (s *state) clone() *state {
	c := &state{
		warehouses:       make(map[int64]warehouse.Warehouse, len(s.warehouses)),
		assignments:      make(map[int64]fulfilment.Assignment, len(s.assignments)),
		stores:           make(map[int64]catalog.Store, len(s.stores)),
		products:         make(map[int64]catalog.Product, len(s.products)),
		nextWarehouseID:  s.nextWarehouseID,
		nextAssignmentID: s.nextAssignmentID,
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = copyWarehouse(v)
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

type DB struct {
	mu    sync.Mutex
	state *state
}

func New() *DB {
	return &DB{state: newState()}
}

// Tx stages writes on a private copy of the store that replaces the shared
// one on Commit.
type Tx struct {
	db    *DB
	state *state
	done  bool
}

func (db *DB) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	db.mu.Lock()
	return &Tx{db: db, state: db.state.clone()}, nil
}

func (tx *Tx) Commit(_ context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.db.state = tx.state
	tx.db.mu.Unlock()
	return nil
}

// Rollback is safe to call after Commit.
func (tx *Tx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.db.mu.Unlock()
	return nil
}

func (db *DB) Lock(_ context.Context, keys []string, options ...core.UpdateOptions) error {
	tx, err := db.updateTx(options)
	if err != nil {
		return err
	}
	if tx == nil {
		return errors.New("lock requires a transaction")
	}
	log.Debug().Strs("keys", keys).Msg("scope locked")
	return nil
}

// read runs fn against the transaction's view when one is supplied, otherwise
// against the committed state under the store lock.
func (db *DB) read(options []core.QueryOptions, fn func(s *state) error) error {
	if len(options) > 0 && options[0].Tx != nil {
		tx, err := asTx(options[0].Tx)
		if err != nil {
			return err
		}
		return fn(tx.state)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.state)
}

// write runs fn against the transaction's staged state, or applies it to the
// committed state directly when no transaction is supplied.
func (db *DB) write(options []core.UpdateOptions, fn func(s *state) error) error {
	tx, err := db.updateTx(options)
	if err != nil {
		return err
	}
	if tx != nil {
		return fn(tx.state)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	staged := db.state.clone()
	if err := fn(staged); err != nil {
		return err
	}
	db.state = staged
	return nil
}

func (db *DB) updateTx(options []core.UpdateOptions) (*Tx, error) {
	if len(options) == 0 || options[0].Tx == nil {
		return nil, nil
	}
	return asTx(options[0].Tx)
}

func asTx(t core.Transaction) (*Tx, error) {
	tx, ok := t.(*Tx)
	if !ok {
		return nil, errors.Errorf("unsupported transaction type %T", t)
	}
	if tx.done {
		return nil, ErrTxDone
	}
	return tx, nil
}
