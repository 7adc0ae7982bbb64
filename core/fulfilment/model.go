package fulfilment

const (
	MaxWarehousesPerProductPerStore = 2
	MaxWarehousesPerStore           = 3
	MaxProductsPerWarehouse         = 5
)

// Assignment records that a warehouse fulfils a product for a store.
type Assignment struct {
	ID          int64 `json:"id"`
	StoreID     int64 `json:"storeId"`
	ProductID   int64 `json:"productId"`
	WarehouseID int64 `json:"warehouseId"`
}

type EventType string

const (
	Assigned   EventType = "FulfilmentAssigned"
	Unassigned EventType = "FulfilmentUnassigned"
)

type Event struct {
	Type       EventType  `json:"type"`
	Assignment Assignment `json:"assignment"`
}
