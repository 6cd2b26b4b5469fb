package store

import (
	"context"

	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"

	"github.com/pkg/errors"
)

var (
	ErrProductNotFound = errors.New("Product not found")
	ErrOrderNotFound   = errors.New("Order not found")
	ErrDuplicateId     = errors.New("a record with this id already exists")
)

// ProductStore persists products. Implementations apply each call atomically;
// nothing spans calls.
type ProductStore interface {
	Query(ctx context.Context, q catalog.Query) (catalog.Page, error)
	Featured(ctx context.Context) ([]models.Product, error)
	// Get resolves an id first, then a slug.
	Get(ctx context.Context, idOrSlug string) (*models.Product, error)
	Create(ctx context.Context, p models.Product) error
	Replace(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, o models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
}
