// Package catalog keeps a local replica of the stores and products owned by
// other systems, enough to answer existence checks during fulfilment.
package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/fulfilment/core"
)

type Store struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EntityType string

const (
	StoreEntity   EntityType = "store"
	ProductEntity EntityType = "product"
)

// Event is a change notice published by the owning system.
type Event struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
	Name string     `json:"name"`
}

type Repository interface {
	StoreExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	ProductExists(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)

	SaveStore(ctx context.Context, store Store, options ...core.UpdateOptions) error
	SaveProduct(ctx context.Context, product Product, options ...core.UpdateOptions) error
}

type Service interface {
	SaveStore(ctx context.Context, store Store) error
	SaveProduct(ctx context.Context, product Product) error
	HandleEvent(ctx context.Context, event Event) error
}

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

type service struct {
	repo Repository
}

func (s *service) SaveStore(ctx context.Context, store Store) error {
	const funcName = "SaveStore"

	if store.ID <= 0 {
		return core.NewError(core.KindInvalidInput, "store id must be positive")
	}

	log.Info().
		Str("func", funcName).
		Int64("id", store.ID).
		Str("name", store.Name).
		Msg("saving store")

	if err := s.repo.SaveStore(ctx, store); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *service) SaveProduct(ctx context.Context, product Product) error {
	const funcName = "SaveProduct"

	if product.ID <= 0 {
		return core.NewError(core.KindInvalidInput, "product id must be positive")
	}

	log.Info().
		Str("func", funcName).
		Int64("id", product.ID).
		Str("name", product.Name).
		Msg("saving product")

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *service) HandleEvent(ctx context.Context, event Event) error {
	switch EntityType(strings.ToLower(string(event.Type))) {
	case StoreEntity:
		return s.SaveStore(ctx, Store{ID: event.ID, Name: event.Name})
	case ProductEntity:
		return s.SaveProduct(ctx, Product{ID: event.ID, Name: event.Name})
	default:
		return core.NewError(core.KindInvalidInput, "unrecognized catalog entity type: %s", event.Type)
	}
}
