package warehouse

import "time"

type Warehouse struct {
	ID               int64      `json:"id"`
	BusinessUnitCode string     `json:"businessUnitCode"`
	Location         string     `json:"location"`
	Capacity         int64      `json:"capacity"`
	Stock            int64      `json:"stock"`
	Created          time.Time  `json:"createdAt"`
	Archived         *time.Time `json:"archivedAt,omitempty"`
}

func (w Warehouse) Active() bool {
	return w.Archived == nil
}

// Request carries the caller supplied fields of a warehouse. Capacity and
// Stock are pointers so an omitted value can be told apart from zero.
type Request struct {
	BusinessUnitCode string `json:"businessUnitCode"`
	Location         string `json:"location"`
	Capacity         *int64 `json:"capacity"`
	Stock            *int64 `json:"stock"`
}

type EventType string

const (
	Created  EventType = "WarehouseCreated"
	Replaced EventType = "WarehouseReplaced"
	Archived EventType = "WarehouseArchived"
)

type Event struct {
	Type      EventType  `json:"type"`
	Warehouse Warehouse  `json:"warehouse"`
	Previous  *Warehouse `json:"previous,omitempty"`
}
