package services

import (
	"context"
	"time"

	"citystore-api-io/api/internal/cache"
	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

// ProductServiceImpl implements the ProductService interface
type ProductServiceImpl struct {
	products  store.ProductStore
	publisher cache.Publisher
	media     util.MediaUploader
	now       func() time.Time
}

// NewProductService creates a new instance of ProductService. media may be nil.
func NewProductService(products store.ProductStore, publisher cache.Publisher, media util.MediaUploader) ProductService {
	return &ProductServiceImpl{
		products:  products,
		publisher: publisher,
		media:     media,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (ps *ProductServiceImpl) ListProducts(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	return ps.products.Query(ctx, q.Normalize())
}

func (ps *ProductServiceImpl) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return ps.products.Featured(ctx)
}

func (ps *ProductServiceImpl) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	return ps.products.Get(ctx, idOrSlug)
}

// CreateProduct assigns id, slug and timestamps and derives stock and rating.
func (ps *ProductServiceImpl) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := models.ValidateStruct(req, ""); err != nil {
		return nil, err
	}

	now := ps.now()
	p := req.ToProduct()
	p.Id = uuid.NewString()
	productSlug, err := ps.uniqueSlug(ctx, p.Name, p.Id)
	if err != nil {
		return nil, err
	}
	p.Slug = productSlug
	p.CreatedAt = now
	p.UpdatedAt = now
	p.RecomputeDerived()

	if err := ps.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	ps.publish(ctx, cache.InvalidateProducts, p.Id)
	if p.IsFeatured {
		ps.publish(ctx, cache.InvalidateFeatured, p.Id)
	}
	return &p, nil
}

// UpdateProduct merges the set fields over the stored product.
func (ps *ProductServiceImpl) UpdateProduct(ctx context.Context, id string, req models.ProductUpdate) (*models.Product, error) {
	if err := models.ValidateStruct(req, ""); err != nil {
		return nil, err
	}

	p, err := ps.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(p)
	if req.Name != nil {
		if p.Slug, err = ps.uniqueSlug(ctx, p.Name, p.Id); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = ps.now()
	p.RecomputeDerived()

	if err := ps.products.Replace(ctx, *p); err != nil {
		return nil, err
	}

	ps.publish(ctx, cache.InvalidateProduct, p.Id)
	ps.publish(ctx, cache.InvalidateFeatured, p.Id)
	return p, nil
}

func (ps *ProductServiceImpl) DeleteProduct(ctx context.Context, id string) error {
	if err := ps.products.Delete(ctx, id); err != nil {
		return err
	}

	ps.publish(ctx, cache.InvalidateProduct, id)
	ps.publish(ctx, cache.InvalidateFeatured, id)
	return nil
}

// AddReview appends a review and recomputes the rating.
func (ps *ProductServiceImpl) AddReview(ctx context.Context, id, user string, req models.ReviewRequest) (*models.Product, error) {
	if err := models.ValidateStruct(req, ""); err != nil {
		return nil, err
	}

	p, err := ps.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := ps.now()
	reviews := make([]models.Review, 0, len(p.Reviews)+1)
	reviews = append(reviews, p.Reviews...)
	p.Reviews = append(reviews, models.Review{
		User:      user,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
	})
	p.UpdatedAt = now
	p.RecomputeDerived()

	if err := ps.products.Replace(ctx, *p); err != nil {
		return nil, err
	}

	ps.publish(ctx, cache.InvalidateReviews, p.Id)
	return p, nil
}

// AddImage uploads the file and appends it to the product images. A primary
// image replaces the previous primary.
func (ps *ProductServiceImpl) AddImage(ctx context.Context, id string, file any, alt string, isPrimary bool) (*models.Product, error) {
	if ps.media == nil {
		return nil, ErrMediaDisabled
	}

	p, err := ps.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := ps.media.Upload(ctx, file)
	if err != nil {
		return nil, err
	}

	images := make([]models.ProductImage, 0, len(p.Images)+1)
	for _, img := range p.Images {
		if isPrimary {
			img.IsPrimary = false
		}
		images = append(images, img)
	}
	p.Images = append(images, models.ProductImage{Url: url, Alt: alt, IsPrimary: isPrimary || len(images) == 0})
	p.UpdatedAt = ps.now()

	if err := ps.products.Replace(ctx, *p); err != nil {
		return nil, err
	}

	ps.publish(ctx, cache.InvalidateProduct, p.Id)
	return p, nil
}

// uniqueSlug slugifies name, adding a suffix when another product already
// owns the plain slug.
func (ps *ProductServiceImpl) uniqueSlug(ctx context.Context, name, id string) (string, error) {
	base := slug.Make(name)
	for _, candidate := range []string{base, models.SuffixedSlug(base, id)} {
		existing, err := ps.products.Get(ctx, candidate)
		if errors.Is(err, store.ErrProductNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.Id == id {
			return candidate, nil
		}
	}
	return base + "-" + id, nil
}

func (ps *ProductServiceImpl) publish(ctx context.Context, messageType cache.MessageType, payload string) {
	if err := ps.publisher.Publish(ctx, messageType, payload); err != nil {
		util.LogError("Failed to publish cache message", err)
	}
}
