package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a rejected operation so callers can react without
// parsing messages.
type Kind string

const (
	KindInvalidInput              Kind = "InvalidInput"
	KindLocationIdentifierInvalid Kind = "LocationIdentifierInvalid"
	KindLocationNotFound          Kind = "LocationNotFound"
	KindWarehouseNotFound         Kind = "WarehouseNotFound"
	KindStoreNotFound             Kind = "StoreNotFound"
	KindProductNotFound           Kind = "ProductNotFound"
	KindDuplicateCode             Kind = "DuplicateCode"
	KindMaxWarehousesReached      Kind = "MaxWarehousesReached"
	KindCapacityExceeded          Kind = "CapacityExceeded"
	KindInsufficientCapacity      Kind = "InsufficientCapacity"
	KindStockMismatch             Kind = "StockMismatch"
	KindMissingIdentifiers        Kind = "MissingIdentifiers"
	KindArchivedWarehouse         Kind = "ArchivedWarehouse"
	KindProductPerStoreLimit      Kind = "ProductPerStoreLimit"
	KindStorePerWarehouseLimit    Kind = "StorePerWarehouseLimit"
	KindWarehouseProductLimit     Kind = "WarehouseProductLimit"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// KindOf returns the kind of the first *Error in err's chain, or the empty
// kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	switch KindOf(err) {
	case KindLocationNotFound, KindWarehouseNotFound, KindStoreNotFound, KindProductNotFound:
		return true
	}
	return false
}
