package location

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sksmith/fulfilment/core"
)

type Location struct {
	Identification        string `json:"identification"`
	MaxNumberOfWarehouses int64  `json:"maxNumberOfWarehouses"`
	MaxCapacity           int64  `json:"maxCapacity"`
}

type Directory interface {
	Resolve(ctx context.Context, identifier string) (Location, error)
}

// Defaults is the catalogue of locations the service ships with.
var Defaults = []Location{
	{Identification: "ZWOLLE-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
	{Identification: "ZWOLLE-002", MaxNumberOfWarehouses: 2, MaxCapacity: 50},
	{Identification: "AMSTERDAM-001", MaxNumberOfWarehouses: 5, MaxCapacity: 100},
	{Identification: "AMSTERDAM-002", MaxNumberOfWarehouses: 3, MaxCapacity: 75},
	{Identification: "TILBURG-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
	{Identification: "HELMOND-001", MaxNumberOfWarehouses: 1, MaxCapacity: 45},
	{Identification: "EINDHOVEN-001", MaxNumberOfWarehouses: 2, MaxCapacity: 70},
	{Identification: "VETSBY-001", MaxNumberOfWarehouses: 1, MaxCapacity: 90},
}

type StaticDirectory struct {
	locations map[string]Location
}

func NewStaticDirectory(locations ...Location) *StaticDirectory {
	if len(locations) == 0 {
		locations = Defaults
	}
	d := &StaticDirectory{locations: make(map[string]Location, len(locations))}
	for _, l := range locations {
		d.locations[l.Identification] = l
	}
	return d
}

func (d *StaticDirectory) Resolve(_ context.Context, identifier string) (Location, error) {
	if err := ValidateIdentifier(identifier); err != nil {
		return Location{}, err
	}
	l, ok := d.locations[identifier]
	if !ok {
		return Location{}, NotFound(identifier)
	}
	return l, nil
}

func ValidateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return core.NewError(core.KindLocationIdentifierInvalid, "location identifier must not be blank")
	}
	return nil
}

func NotFound(identifier string) error {
	return core.NewError(core.KindLocationNotFound, "location %s does not exist", identifier)
}

// TranslateNotFound turns a repository miss into the directory's not found error.
func TranslateNotFound(identifier string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return NotFound(identifier)
	}
	return errors.WithStack(err)
}
