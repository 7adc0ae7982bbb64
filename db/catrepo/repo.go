package catrepo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/catalog"
	"github.com/sksmith/fulfilment/db"
)

var metrics = db.NewMetrics("catalog")

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) *dbRepo {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) StoreExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	return d.exists(ctx, "StoreExists", `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`, id, options...)
}

func (d *dbRepo) ProductExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	return d.exists(ctx, "ProductExists", `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id, options...)
}

func (d *dbRepo) exists(ctx context.Context, funcName, query string, id int64, options ...core.QueryOptions) (bool, error) {
	m := metrics.Start(funcName)
	tx, _, err := db.GetQueryOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return false, err
	}

	var ok bool
	if err = tx.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		m.Complete(err)
		return false, errors.WithStack(err)
	}

	m.Complete(nil)
	return ok, nil
}

func (d *dbRepo) SaveStore(ctx context.Context, store catalog.Store, options ...core.UpdateOptions) error {
	return d.upsert(ctx, "SaveStore", `
		INSERT INTO stores (id, name)
		     VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;`,
		store.ID, store.Name, options...)
}

func (d *dbRepo) SaveProduct(ctx context.Context, product catalog.Product, options ...core.UpdateOptions) error {
	return d.upsert(ctx, "SaveProduct", `
		INSERT INTO products (id, name)
		     VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;`,
		product.ID, product.Name, options...)
}

func (d *dbRepo) upsert(ctx context.Context, funcName, query string, id int64, name string, options ...core.UpdateOptions) error {
	m := metrics.Start(funcName)
	tx, err := db.GetUpdateOptions(d.conn, options...)
	if err != nil {
		m.Complete(err)
		return err
	}

	_, err = tx.Exec(ctx, query, id, name)
	m.Complete(err)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
