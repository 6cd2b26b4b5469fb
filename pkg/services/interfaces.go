package services

import (
	"context"

	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/checkout"
	"citystore-api-io/api/pkg/models"

	"github.com/pkg/errors"
)

var ErrMediaDisabled = errors.New("image uploads are not configured")

// ProductService defines the interface for catalog operations
type ProductService interface {
	ListProducts(ctx context.Context, q catalog.Query) (catalog.Page, error)
	FeaturedProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error)

	CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	AddReview(ctx context.Context, id, user string, req models.ReviewRequest) (*models.Product, error)
	AddImage(ctx context.Context, id string, file any, alt string, isPrimary bool) (*models.Product, error)
}

// OrderService defines the interface for order operations. It is also the
// checkout's order submitter.
type OrderService interface {
	checkout.Submitter

	CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}
