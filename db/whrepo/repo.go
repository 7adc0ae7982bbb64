package whrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/db"
)

const columns = `id, business_unit_code, location, capacity, stock, created_at, archived_at`

var metrics = db.NewMetrics("warehouse")

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) *dbRepo {
	return &dbRepo{
		conn: conn,
	}
}

func scan(row pgx.Row, wh *warehouse.Warehouse) error {
	return row.Scan(&wh.ID, &wh.BusinessUnitCode, &wh.Location, &wh.Capacity, &wh.Stock, &wh.Created, &wh.Archived)
}

func (d *dbRepo) GetActiveByBusinessUnitCode(ctx context.Context, code string, options ...core.QueryOptions) (warehouse.Warehouse, error) {
	m := metrics.Start("GetActiveByBusinessUnitCode")
	tx, forUpdate, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return warehouse.Warehouse{}, err
	}

	wh := warehouse.Warehouse{}
	err = scan(tx.QueryRow(ctx,
		`SELECT `+columns+` FROM warehouses WHERE business_unit_code = $1 AND archived_at IS NULL `+forUpdate,
		code), &wh)
	if err != nil {
		if err == pgx.ErrNoRows {
			m.Complete(nil)
			return wh, errors.WithStack(core.ErrNotFound)
		}
		m.Complete(err)
		return wh, errors.WithStack(err)
	}

	m.Complete(nil)
	return wh, nil
}

func (d *dbRepo) GetWarehouse(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
	m := metrics.Start("GetWarehouse")
	tx, forUpdate, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return warehouse.Warehouse{}, err
	}

	wh := warehouse.Warehouse{}
	err = scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM warehouses WHERE id = $1 `+forUpdate, id), &wh)
	if err != nil {
		if err == pgx.ErrNoRows {
			m.Complete(nil)
			return wh, errors.WithStack(core.ErrNotFound)
		}
		m.Complete(err)
		return wh, errors.WithStack(err)
	}

	m.Complete(nil)
	return wh, nil
}

func (d *dbRepo) GetAllWarehouses(ctx context.Context, options ...core.QueryOptions) ([]warehouse.Warehouse, error) {
	m := metrics.Start("GetAllWarehouses")
	tx, forUpdate, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return nil, err
	}

	whs := make([]warehouse.Warehouse, 0)
	rows, err := tx.Query(ctx,
		`SELECT `+columns+` FROM warehouses ORDER BY id `+forUpdate)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		wh := warehouse.Warehouse{}
		if err = scan(rows, &wh); err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		whs = append(whs, wh)
	}
	if err = rows.Err(); err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}

	m.Complete(nil)
	return whs, nil
}

func (d *dbRepo) CountActiveByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
	return d.aggregate(ctx, "CountActiveByLocation",
		`SELECT COUNT(*) FROM warehouses WHERE location = $1 AND archived_at IS NULL`, location, options...)
}

func (d *dbRepo) TotalCapacityByLocation(ctx context.Context, location string, options ...core.QueryOptions) (int64, error) {
	return d.aggregate(ctx, "TotalCapacityByLocation",
		`SELECT COALESCE(SUM(capacity), 0) FROM warehouses WHERE location = $1 AND archived_at IS NULL`, location, options...)
}

func (d *dbRepo) aggregate(ctx context.Context, funcName, query, location string, options ...core.QueryOptions) (int64, error) {
	m := metrics.Start(funcName)
	tx, _, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return 0, err
	}

	var n int64
	if err = tx.QueryRow(ctx, query, location).Scan(&n); err != nil {
		m.Complete(err)
		return 0, errors.WithStack(err)
	}

	m.Complete(nil)
	return n, nil
}

func (d *dbRepo) CreateWarehouse(ctx context.Context, wh *warehouse.Warehouse, options ...core.UpdateOptions) error {
	m := metrics.Start("CreateWarehouse")
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return err
	}

	insert := `INSERT INTO warehouses (business_unit_code, location, capacity, stock, created_at, archived_at)
                    VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`
	err = tx.QueryRow(ctx, insert, wh.BusinessUnitCode, wh.Location, wh.Capacity, wh.Stock, wh.Created, wh.Archived).Scan(&wh.ID)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) UpdateWarehouse(ctx context.Context, wh warehouse.Warehouse, options ...core.UpdateOptions) error {
	m := metrics.Start("UpdateWarehouse")
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return err
	}

	update := `UPDATE warehouses
                  SET business_unit_code = $2, location = $3, capacity = $4, stock = $5, archived_at = $6
                WHERE id = $1;`
	ct, err := tx.Exec(ctx, update, wh.ID, wh.BusinessUnitCode, wh.Location, wh.Capacity, wh.Stock, wh.Archived)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	if ct.RowsAffected() == 0 {
		return errors.WithStack(core.ErrNotFound)
	}
	return nil
}

func (d *dbRepo) Lock(ctx context.Context, keys []string, options ...core.UpdateOptions) error {
	m := metrics.Start("LockWarehouseScope")
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err == nil && (len(options) == 0 || options[0].Tx == nil) {
		err = errors.New("lock requires a transaction")
	}
	if err != nil {
		m.Complete(err)
		return err
	}

	err = db.AdvisoryLock(ctx, tx, keys)
	m.Complete(err)
	return err
}

func (d *dbRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return tx, nil
}
