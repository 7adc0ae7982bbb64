package fulfilment_test

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
	"github.com/sksmith/fulfilment/core/fulfilment"
	"github.com/sksmith/fulfilment/core/warehouse"
	"github.com/sksmith/fulfilment/db"
	"github.com/sksmith/fulfilment/db/catrepo"
	"github.com/sksmith/fulfilment/db/fulfilrepo"
	"github.com/sksmith/fulfilment/db/whrepo"
	"github.com/sksmith/fulfilment/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func activeWarehouse(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
	return warehouse.Warehouse{ID: id, BusinessUnitCode: "W1", Location: "L", Capacity: 10, Created: time.Now()}, nil
}

func count(n int64) func(ctx context.Context, id int64, options ...core.QueryOptions) (int64, error) {
	return func(ctx context.Context, id int64, options ...core.QueryOptions) (int64, error) {
		return n, nil
	}
}

func TestAssign(t *testing.T) {
	archived := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string

		storeID, productID, warehouseID int64

		storeExistsFunc   func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
		productExistsFunc func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
		getWarehouseFunc  func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error)
		getAssignmentFunc func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error)
		perProductFunc    func(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error)
		perStoreFunc      func(ctx context.Context, id int64, options ...core.QueryOptions) (int64, error)
		usedFunc          func(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error)
		perWarehouseFunc  func(ctx context.Context, id int64, options ...core.QueryOptions) (int64, error)
		saveFunc          func(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error
		publishFunc       func(ctx context.Context, event fulfilment.Event) error

		want             fulfilment.Assignment
		wantRepoCallCnt  map[string]int
		wantTxCallCnt    map[string]int
		wantQueueCallCnt map[string]int
		wantKind         core.Kind
		wantErr          bool
	}{
		{
			name:    "warehouse is assigned",
			storeID: 1, productID: 2, warehouseID: 3,

			want:             fulfilment.Assignment{ID: 1, StoreID: 1, ProductID: 2, WarehouseID: 3},
			wantRepoCallCnt:  map[string]int{"BeginTransaction": 1, "Lock": 1, "SaveAssignment": 1},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 1},
		},
		{
			name:    "missing store id",
			storeID: 0, productID: 2, warehouseID: 3,

			wantRepoCallCnt:  map[string]int{"BeginTransaction": 0, "SaveAssignment": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantKind:         core.KindMissingIdentifiers,
			wantErr:          true,
		},
		{
			name:    "missing product id",
			storeID: 1, productID: 0, warehouseID: 3,

			wantRepoCallCnt: map[string]int{"BeginTransaction": 0},
			wantKind:        core.KindMissingIdentifiers,
			wantErr:         true,
		},
		{
			name:    "negative warehouse id",
			storeID: 1, productID: 2, warehouseID: -3,

			wantRepoCallCnt: map[string]int{"BeginTransaction": 0},
			wantKind:        core.KindMissingIdentifiers,
			wantErr:         true,
		},
		{
			name:    "unknown store",
			storeID: 1, productID: 2, warehouseID: 3,
			storeExistsFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
				return false, nil
			},
			productExistsFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
				return false, nil
			},

			wantRepoCallCnt:  map[string]int{"BeginTransaction": 1, "GetAssignment": 0, "SaveAssignment": 0},
			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantKind:         core.KindStoreNotFound,
			wantErr:          true,
		},
		{
			name:    "unknown product",
			storeID: 1, productID: 2, warehouseID: 3,
			productExistsFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
				return false, nil
			},

			wantRepoCallCnt: map[string]int{"SaveAssignment": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantKind:        core.KindProductNotFound,
			wantErr:         true,
		},
		{
			name:    "unknown warehouse",
			storeID: 1, productID: 2, warehouseID: 3,
			getWarehouseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
				return warehouse.Warehouse{}, core.ErrNotFound
			},

			wantRepoCallCnt: map[string]int{"SaveAssignment": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantKind:        core.KindWarehouseNotFound,
			wantErr:         true,
		},
		{
			name:    "archived warehouse",
			storeID: 1, productID: 2, warehouseID: 3,
			getWarehouseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
				return warehouse.Warehouse{ID: id, Archived: &archived}, nil
			},

			wantRepoCallCnt: map[string]int{"SaveAssignment": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantKind:        core.KindArchivedWarehouse,
			wantErr:         true,
		},
		{
			name:    "existing assignment is returned unchanged",
			storeID: 1, productID: 2, warehouseID: 3,
			getAssignmentFunc: func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
				return fulfilment.Assignment{ID: 42, StoreID: storeID, ProductID: productID, WarehouseID: warehouseID}, nil
			},
			perProductFunc: func(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error) {
				return fulfilment.MaxWarehousesPerProductPerStore, nil
			},

			want:             fulfilment.Assignment{ID: 42, StoreID: 1, ProductID: 2, WarehouseID: 3},
			wantRepoCallCnt:  map[string]int{"CountDistinctWarehousesByStoreAndProduct": 0, "SaveAssignment": 0},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
		},
		{
			name:    "product already fulfilled by two warehouses for store",
			storeID: 1, productID: 2, warehouseID: 3,
			perProductFunc: func(ctx context.Context, storeID, productID int64, options ...core.QueryOptions) (int64, error) {
				return fulfilment.MaxWarehousesPerProductPerStore, nil
			},

			wantRepoCallCnt:  map[string]int{"CountDistinctWarehousesByStore": 0, "SaveAssignment": 0},
			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantKind:         core.KindProductPerStoreLimit,
			wantErr:          true,
		},
		{
			name:    "store already fulfilled by three other warehouses",
			storeID: 1, productID: 2, warehouseID: 3,
			perStoreFunc: count(fulfilment.MaxWarehousesPerStore),

			wantRepoCallCnt: map[string]int{"IsWarehouseUsedForStore": 1, "CountDistinctProductsByWarehouse": 0, "SaveAssignment": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantKind:        core.KindStorePerWarehouseLimit,
			wantErr:         true,
		},
		{
			name:    "store at limit reuses one of its warehouses",
			storeID: 1, productID: 2, warehouseID: 3,
			perStoreFunc: count(fulfilment.MaxWarehousesPerStore),
			usedFunc: func(ctx context.Context, storeID, warehouseID int64, options ...core.QueryOptions) (bool, error) {
				return true, nil
			},

			want:            fulfilment.Assignment{ID: 1, StoreID: 1, ProductID: 2, WarehouseID: 3},
			wantRepoCallCnt: map[string]int{"IsWarehouseUsedForStore": 1, "SaveAssignment": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name:    "store below limit skips reuse check",
			storeID: 1, productID: 2, warehouseID: 3,
			perStoreFunc: count(fulfilment.MaxWarehousesPerStore - 1),

			want:            fulfilment.Assignment{ID: 1, StoreID: 1, ProductID: 2, WarehouseID: 3},
			wantRepoCallCnt: map[string]int{"IsWarehouseUsedForStore": 0, "SaveAssignment": 1},
		},
		{
			name:    "warehouse already stores five products",
			storeID: 1, productID: 2, warehouseID: 3,
			perWarehouseFunc: count(fulfilment.MaxProductsPerWarehouse),

			wantRepoCallCnt: map[string]int{"SaveAssignment": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantKind:        core.KindWarehouseProductLimit,
			wantErr:         true,
		},
		{
			name:    "unexpected error saving",
			storeID: 1, productID: 2, warehouseID: 3,
			saveFunc: func(ctx context.Context, a *fulfilment.Assignment, options ...core.UpdateOptions) error {
				return errors.New("some unexpected error")
			},

			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantErr:          true,
		},
		{
			name:    "unexpected error from catalog",
			storeID: 1, productID: 2, warehouseID: 3,
			storeExistsFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
				return false, errors.New("some unexpected error")
			},

			wantTxCallCnt: map[string]int{"Rollback": 1},
			wantErr:       true,
		},
		{
			name:    "publish failure does not fail assignment",
			storeID: 1, productID: 2, warehouseID: 3,
			publishFunc: func(ctx context.Context, event fulfilment.Event) error {
				return errors.New("broker unavailable")
			},

			want:             fulfilment.Assignment{ID: 1, StoreID: 1, ProductID: 2, WarehouseID: 3},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 1},
		},
	}

	for _, test := range tests {
		mockRepo := fulfilrepo.NewMockRepo()
		mockCatalog := catrepo.NewMockRepo()
		mockWarehouses := whrepo.NewMockRepo()
		mockWarehouses.GetWarehouseFunc = activeWarehouse
		mockQueue := fulfilment.NewMockQueue()
		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		if test.storeExistsFunc != nil {
			mockCatalog.StoreExistsFunc = test.storeExistsFunc
		}
		if test.productExistsFunc != nil {
			mockCatalog.ProductExistsFunc = test.productExistsFunc
		}
		if test.getWarehouseFunc != nil {
			mockWarehouses.GetWarehouseFunc = test.getWarehouseFunc
		}
		if test.getAssignmentFunc != nil {
			mockRepo.GetAssignmentFunc = test.getAssignmentFunc
		}
		if test.perProductFunc != nil {
			mockRepo.CountDistinctWarehousesByStoreAndProductFunc = test.perProductFunc
		}
		if test.perStoreFunc != nil {
			mockRepo.CountDistinctWarehousesByStoreFunc = test.perStoreFunc
		}
		if test.usedFunc != nil {
			mockRepo.IsWarehouseUsedForStoreFunc = test.usedFunc
		}
		if test.perWarehouseFunc != nil {
			mockRepo.CountDistinctProductsByWarehouseFunc = test.perWarehouseFunc
		}
		if test.saveFunc != nil {
			mockRepo.SaveAssignmentFunc = test.saveFunc
		}
		if test.publishFunc != nil {
			mockQueue.PublishFulfilmentFunc = test.publishFunc
		}

		service := fulfilment.NewService(mockRepo, mockCatalog, mockWarehouses, mockQueue)

		t.Run(test.name, func(t *testing.T) {
			got, err := service.Assign(context.Background(), test.storeID, test.productID, test.warehouseID)
			if test.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !test.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}
			if kind := core.KindOf(err); kind != test.wantKind {
				t.Errorf("unexpected error kind got=%v want=%v", kind, test.wantKind)
			}
			if got != test.want {
				t.Errorf("unexpected assignment got=%+v want=%+v", got, test.want)
			}

			for f, c := range test.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range test.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
			for f, c := range test.wantQueueCallCnt {
				mockQueue.VerifyCount(f, c, t)
			}
		})
	}
}

func TestAssignLocksStoreAndWarehouse(t *testing.T) {
	mockRepo := fulfilrepo.NewMockRepo()
	mockWarehouses := whrepo.NewMockRepo()
	mockWarehouses.GetWarehouseFunc = activeWarehouse

	var gotKeys []string
	mockRepo.LockFunc = func(ctx context.Context, keys []string, options ...core.UpdateOptions) error {
		gotKeys = keys
		if len(options) == 0 || options[0].Tx == nil {
			t.Errorf("expected lock to be taken within a transaction")
		}
		return nil
	}

	service := fulfilment.NewService(mockRepo, catrepo.NewMockRepo(), mockWarehouses, nil)
	if _, err := service.Assign(context.Background(), 7, 2, 9); err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}

	want := []string{"store:7", "warehouse:9"}
	if !reflect.DeepEqual(gotKeys, want) {
		t.Errorf("unexpected lock keys got=%v want=%v", gotKeys, want)
	}
}

func TestAssignReadsWarehouseForUpdate(t *testing.T) {
	mockRepo := fulfilrepo.NewMockRepo()
	mockWarehouses := whrepo.NewMockRepo()

	forUpdate := false
	mockWarehouses.GetWarehouseFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (warehouse.Warehouse, error) {
		forUpdate = len(options) > 0 && options[0].ForUpdate
		return activeWarehouse(ctx, id)
	}

	service := fulfilment.NewService(mockRepo, catrepo.NewMockRepo(), mockWarehouses, nil)
	if _, err := service.Assign(context.Background(), 1, 2, 3); err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if !forUpdate {
		t.Errorf("expected warehouse to be read for update")
	}
}

func TestUnassign(t *testing.T) {
	tests := []struct {
		name string

		getAssignmentFunc func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error)
		deleteFunc        func(ctx context.Context, id int64, options ...core.UpdateOptions) error

		wantRepoCallCnt  map[string]int
		wantTxCallCnt    map[string]int
		wantQueueCallCnt map[string]int
		wantErr          bool
	}{
		{
			name: "assignment is removed",
			getAssignmentFunc: func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
				return fulfilment.Assignment{ID: 5, StoreID: storeID, ProductID: productID, WarehouseID: warehouseID}, nil
			},

			wantRepoCallCnt:  map[string]int{"Lock": 1, "DeleteAssignment": 1},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 1},
		},
		{
			name: "missing assignment is a no-op",

			wantRepoCallCnt:  map[string]int{"Lock": 1, "DeleteAssignment": 0},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
		},
		{
			name: "unexpected error reading assignment",
			getAssignmentFunc: func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
				return fulfilment.Assignment{}, errors.New("some unexpected error")
			},

			wantRepoCallCnt:  map[string]int{"DeleteAssignment": 0},
			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantErr:          true,
		},
		{
			name: "unexpected error deleting",
			getAssignmentFunc: func(ctx context.Context, storeID, productID, warehouseID int64, options ...core.QueryOptions) (fulfilment.Assignment, error) {
				return fulfilment.Assignment{ID: 5}, nil
			},
			deleteFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error {
				return errors.New("some unexpected error")
			},

			wantRepoCallCnt:  map[string]int{"DeleteAssignment": 1},
			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantQueueCallCnt: map[string]int{"PublishFulfilment": 0},
			wantErr:          true,
		},
	}

	for _, test := range tests {
		mockRepo := fulfilrepo.NewMockRepo()
		mockQueue := fulfilment.NewMockQueue()
		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}
		if test.getAssignmentFunc != nil {
			mockRepo.GetAssignmentFunc = test.getAssignmentFunc
		}
		if test.deleteFunc != nil {
			mockRepo.DeleteAssignmentFunc = test.deleteFunc
		}

		service := fulfilment.NewService(mockRepo, catrepo.NewMockRepo(), whrepo.NewMockRepo(), mockQueue)

		t.Run(test.name, func(t *testing.T) {
			err := service.Unassign(context.Background(), 1, 2, 3)
			if test.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !test.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}

			for f, c := range test.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range test.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
			for f, c := range test.wantQueueCallCnt {
				mockQueue.VerifyCount(f, c, t)
			}
		})
	}
}

func TestListByStore(t *testing.T) {
	want := []fulfilment.Assignment{
		{ID: 1, StoreID: 4, ProductID: 1, WarehouseID: 1},
		{ID: 2, StoreID: 4, ProductID: 2, WarehouseID: 1},
	}
	mockRepo := fulfilrepo.NewMockRepo()
	mockRepo.ListByStoreFunc = func(ctx context.Context, storeID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
		return want, nil
	}

	service := fulfilment.NewService(mockRepo, catrepo.NewMockRepo(), whrepo.NewMockRepo(), nil)
	got, err := service.ListByStore(context.Background(), 4)
	if err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected assignments got=%v want=%v", got, want)
	}
	mockRepo.VerifyCount("ListByStore", 1, t)
	mockRepo.VerifyCount("BeginTransaction", 0, t)
}

func TestListByWarehouseError(t *testing.T) {
	mockRepo := fulfilrepo.NewMockRepo()
	mockRepo.ListByWarehouseFunc = func(ctx context.Context, warehouseID int64, options ...core.QueryOptions) ([]fulfilment.Assignment, error) {
		return nil, errors.New("some unexpected error")
	}

	service := fulfilment.NewService(mockRepo, catrepo.NewMockRepo(), whrepo.NewMockRepo(), nil)
	if _, err := service.ListByWarehouse(context.Background(), 1); err == nil {
		t.Errorf("expected error, got none")
	}
}
