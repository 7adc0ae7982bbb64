package whrepo_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/db"
	"github.com/sksmith/fulfilment/db/whrepo"
	"github.com/sksmith/fulfilment/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestGetActiveByBusinessUnitCodeNotFound(t *testing.T) {
	conn := db.NewMockConn()
	var gotSQL string
	conn.QueryRowFunc = func(ctx context.Context, sql string, args ...interface{}) pgx.Row {
		gotSQL = sql
		return db.MockRow{ScanFunc: func(dest ...interface{}) error { return pgx.ErrNoRows }}
	}
	repo := whrepo.NewPostgresRepo(conn)

	_, err := repo.GetActiveByBusinessUnitCode(context.Background(), "W1", core.QueryOptions{ForUpdate: true})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unexpected error got=%v want=%v", err, core.ErrNotFound)
	}
	if !strings.Contains(gotSQL, "archived_at IS NULL") || !strings.Contains(gotSQL, "FOR UPDATE") {
		t.Errorf("unexpected sql got=%q", gotSQL)
	}
}

func TestGetAllWarehousesIncludesArchived(t *testing.T) {
	conn := db.NewMockConn()
	var gotSQL string
	conn.QueryFunc = func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
		gotSQL = sql
		return nil, errors.New("some unexpected error")
	}
	repo := whrepo.NewPostgresRepo(conn)

	if _, err := repo.GetAllWarehouses(context.Background()); err == nil {
		t.Errorf("expected error, got none")
	}
	if strings.Contains(gotSQL, "WHERE") || !strings.Contains(gotSQL, "ORDER BY id") {
		t.Errorf("unexpected sql got=%q", gotSQL)
	}
}

func TestCountActiveByLocation(t *testing.T) {
	conn := db.NewMockConn()
	conn.QueryRowFunc = func(ctx context.Context, sql string, args ...interface{}) pgx.Row {
		if args[0] != "AMSTERDAM-001" {
			t.Errorf("unexpected location arg got=%v", args[0])
		}
		return db.NewMockRow(int64(2))
	}
	repo := whrepo.NewPostgresRepo(conn)

	n, err := repo.CountActiveByLocation(context.Background(), "AMSTERDAM-001")
	if err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if n != 2 {
		t.Errorf("unexpected count got=%v want=%v", n, 2)
	}
}

func TestUpdateWarehouseMissingRow(t *testing.T) {
	conn := db.NewMockConn()
	conn.ExecFunc = func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	repo := whrepo.NewPostgresRepo(conn)

	err := repo.UpdateWarehouse(context.Background(), warehouse.Warehouse{ID: 5})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unexpected error got=%v want=%v", err, core.ErrNotFound)
	}
}

func TestCreateWarehouseAssignsID(t *testing.T) {
	conn := db.NewMockConn()
	conn.QueryRowFunc = func(ctx context.Context, sql string, args ...interface{}) pgx.Row {
		return db.NewMockRow(int64(11))
	}
	repo := whrepo.NewPostgresRepo(conn)

	wh := warehouse.Warehouse{BusinessUnitCode: "W1", Location: "ZWOLLE-001", Capacity: 10}
	if err := repo.CreateWarehouse(context.Background(), &wh); err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if wh.ID != 11 {
		t.Errorf("unexpected id got=%v want=%v", wh.ID, 11)
	}
}
