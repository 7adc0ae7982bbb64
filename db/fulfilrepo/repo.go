package fulfilrepo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/db"
)

const table = "store_product_fulfilments"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var metrics = db.NewMetrics("fulfilment")

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) *dbRepo {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) GetAssignment(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
	m := metrics.Start("GetAssignment")
	tx, forUpdate, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return fulfilment.Assignment{}, err
	}

	query, args, err := psql.
		Select("id", "store_id", "product_id", "warehouse_id").
		From(table).
		Where(sq.Eq{"store_id": storeID, "product_id": productID, "warehouse_id": warehouseID}).
		Suffix(forUpdate).
		ToSql()
	if err != nil {
		m.Complete(err)
		return fulfilment.Assignment{}, errors.WithStack(err)
	}

	a := fulfilment.Assignment{}
	err = tx.QueryRow(ctx, query, args...).Scan(&a.ID, &a.StoreID, &a.ProductID, &a.WarehouseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			m.Complete(nil)
			return a, errors.WithStack(core.ErrNotFound)
		}
		m.Complete(err)
		return a, errors.WithStack(err)
	}

	m.Complete(nil)
	return a, nil
}

func (d *dbRepo) CountDistinctWarehousesByStoreAndProduct(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error) {
	return d.count(ctx, "CountDistinctWarehousesByStoreAndProduct", "COUNT(DISTINCT warehouse_id)",
		sq.Eq{"store_id": storeID, "product_id": productID}, options...)
}

func (d *dbRepo) CountDistinctWarehousesByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) (int64, error) {
	return d.count(ctx, "CountDistinctWarehousesByStore", "COUNT(DISTINCT warehouse_id)",
		sq.Eq{"store_id": storeID}, options...)
}

func (d *dbRepo) IsWarehouseUsedForStore(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error) {
	n, err := d.count(ctx, "IsWarehouseUsedForStore", "COUNT(*)",
		sq.Eq{"store_id": storeID, "warehouse_id": warehouseID}, options...)
	return n > 0, err
}

func (d *dbRepo) CountDistinctProductsByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) (int64, error) {
	return d.count(ctx, "CountDistinctProductsByWarehouse", "COUNT(DISTINCT product_id)",
		sq.Eq{"warehouse_id": warehouseID}, options...)
}

func (d *dbRepo) count(ctx context.Context, funcName, column string, where sq.Eq, options ...core.QueryOptions) (int64, error) {
	m := metrics.Start(funcName)
	tx, _, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return 0, err
	}

	query, args, err := psql.Select(column).From(table).Where(where).ToSql()
	if err != nil {
		m.Complete(err)
		return 0, errors.WithStack(err)
	}

	var n int64
	if err = tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		m.Complete(err)
		return 0, errors.WithStack(err)
	}

	m.Complete(nil)
	return n, nil
}

func (d *dbRepo) ListByStore(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
	return d.list(ctx, "ListByStore", sq.Eq{"store_id": storeID}, options...)
}

func (d *dbRepo) ListByWarehouse(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
	return d.list(ctx, "ListByWarehouse", sq.Eq{"warehouse_id": warehouseID}, options...)
}

func (d *dbRepo) list(ctx context.Context, funcName string, where sq.Eq, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
	m := metrics.Start(funcName)
	tx, forUpdate, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return nil, err
	}

	query, args, err := psql.
		Select("id", "store_id", "product_id", "warehouse_id").
		From(table).
		Where(where).
		OrderBy("id").
		Suffix(forUpdate).
		ToSql()
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	as := make([]fulfilment.Assignment, 0)
	for rows.Next() {
		a := fulfilment.Assignment{}
		if err = rows.Scan(&a.ID, &a.StoreID, &a.ProductID, &a.WarehouseID); err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		as = append(as, a)
	}
	if err = rows.Err(); err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}

	m.Complete(nil)
	return as, nil
}

func (d *dbRepo) SaveAssignment(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error {
	m := metrics.Start("SaveAssignment")
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return err
	}

	query, args, err := psql.
		Insert(table).
		Columns("store_id", "product_id", "warehouse_id").
		Values(a.StoreID, a.ProductID, a.WarehouseID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&a.ID)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (d *dbRepo) DeleteAssignment(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	m := metrics.Start("DeleteAssignment")
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return err
	}

	query, args, err := psql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	ct, err := tx.Exec(ctx, query, args...)
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
	m := metrics.Start("LockFulfilmentScope")
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
