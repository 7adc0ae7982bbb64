package location

import (
	"context"

	"github.com/sksmith/fulfilment/test"
)

type MockDirectory struct {
	ResolveFunc func(ctx context.Context, identifier string) (Location, error)
	*test.CallWatcher
}

func NewMockDirectory(locations ...Location) *MockDirectory {
	static := NewStaticDirectory(locations...)
	return &MockDirectory{
		ResolveFunc: static.Resolve,
		CallWatcher: test.NewCallWatcher(),
	}
}

func (d *MockDirectory) Resolve(ctx context.Context, identifier string) (Location, error) {
	d.AddCall(ctx, identifier)
	return d.ResolveFunc(ctx, identifier)
}
