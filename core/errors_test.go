package core_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "domain error", err: core.NewError(core.KindDuplicateCode, "dup %s", "W1"), want: core.KindDuplicateCode},
		{
			name: "wrapped domain error",
			err:  errors.WithMessage(core.NewError(core.KindStockMismatch, "stock"), "replace failed"),
			want: core.KindStockMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := core.KindOf(test.err); got != test.want {
				t.Errorf("unexpected kind got=%v want=%v", got, test.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "repository not found", err: errors.WithStack(core.ErrNotFound), want: true},
		{name: "warehouse not found", err: core.NewError(core.KindWarehouseNotFound, "x"), want: true},
		{name: "location not found", err: core.NewError(core.KindLocationNotFound, "x"), want: true},
		{name: "store not found", err: core.NewError(core.KindStoreNotFound, "x"), want: true},
		{name: "constraint", err: core.NewError(core.KindProductPerStoreLimit, "x"), want: false},
		{name: "infrastructure", err: errors.New("connection reset"), want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := core.IsNotFound(test.err); got != test.want {
				t.Errorf("unexpected result got=%v want=%v", got, test.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := core.NewError(core.KindCapacityExceeded, "location %s exceeds %d", "ZWOLLE-001", 40)
	if err.Error() != "location ZWOLLE-001 exceeds 40" {
		t.Errorf("unexpected message got=%v", err.Error())
	}
}
