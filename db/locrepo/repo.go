// Package locrepo reads the location catalogue from the locations table.
package locrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/location"
	"github.com/sksmith/fulfilment/db"
)

var metrics = db.NewMetrics("location")

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) *dbRepo {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) Resolve(ctx context.Context, identifier string) (location.Location, error) {
	if err := location.ValidateIdentifier(identifier); err != nil {
		return location.Location{}, err
	}

	m := metrics.Start("ResolveLocation")

	l := location.Location{}
	err := d.conn.QueryRow(ctx,
		`SELECT identification, max_number_of_warehouses, max_capacity FROM locations WHERE identification = $1`,
		identifier).Scan(&l.Identification, &l.MaxNumberOfWarehouses, &l.MaxCapacity)
	if err != nil {
		if err == pgx.ErrNoRows {
			m.Complete(nil)
			return l, location.TranslateNotFound(identifier, core.ErrNotFound)
		}
		m.Complete(err)
		return l, errors.WithStack(err)
	}

	m.Complete(nil)
	return l, nil
}
