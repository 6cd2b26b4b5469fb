package services

import (
	"context"
	"testing"

	"citystore-api-io/api/internal/cache"
	"citystore-api-io/api/pkg/catalog"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	messages []cache.Message
}

func (r *recordingPublisher) Publish(_ context.Context, t cache.MessageType, payload string) error {
	r.messages = append(r.messages, cache.Message{Type: t, Payload: payload})
	return nil
}

func (r *recordingPublisher) types() []cache.MessageType {
	out := make([]cache.MessageType, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Type)
	}
	return out
}

type fakeUploader struct {
	err error
}

func (f *fakeUploader) Upload(context.Context, any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/p.jpg", nil
}

func setupProducts(t *testing.T) (ProductService, *recordingPublisher) {
	seed, err := store.DefaultCatalog()
	require.NoError(t, err)
	publisher := &recordingPublisher{}
	return NewProductService(store.NewMemoryProductStore(seed), publisher, &fakeUploader{}), publisher
}

func productRequest() models.ProductRequest {
	return models.ProductRequest{
		Name:        "Linen Shirt",
		Description: "Breathable linen",
		Price:       ptr(45.0),
		Category:    models.CategoryMenShirts,
		Brand:       "CityStore",
		Sizes:       []models.SizeStock{{Size: models.SizeM, Stock: 3}, {Size: models.SizeL, Stock: 4}},
		IsFeatured:  true,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, publisher := setupProducts(t)

	p, err := svc.CreateProduct(ctx, productRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, p.Id)
	assert.Equal(t, "linen-shirt", p.Slug)
	assert.Equal(t, 7, p.TotalStock)
	assert.Equal(t, models.Rating{}, p.Rating)
	assert.True(t, p.IsActive)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, []cache.MessageType{cache.InvalidateProducts, cache.InvalidateFeatured}, publisher.types())

	got, err := svc.GetProduct(ctx, "linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, p.Id, got.Id)

	t.Run("validation", func(t *testing.T) {
		req := productRequest()
		req.Name = ""
		req.Category = "hats"
		req.Sizes = []models.SizeStock{{Size: "XXXL", Stock: -1}}

		_, err := svc.CreateProduct(ctx, req)
		verr, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, models.MsgRequired, verr.Fields["name"])
		assert.Contains(t, verr.Fields, "category")
		assert.Contains(t, verr.Fields, "sizes[0].size")
		assert.Contains(t, verr.Fields, "sizes[0].stock")
	})

	t.Run("missing price", func(t *testing.T) {
		req := productRequest()
		req.Price = nil

		_, err := svc.CreateProduct(ctx, req)
		verr, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, models.MsgRequired, verr.Fields["price"])
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		req := productRequest()
		req.Name = "Free Tote"
		req.Price = ptr(0.0)

		p, err := svc.CreateProduct(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 0.0, p.Price)
	})
}

// slugIndexedStore rejects writes that reuse another product's slug, the way
// the unique slug index does on MongoDB.
type slugIndexedStore struct {
	store.ProductStore
}

func (s slugIndexedStore) checkSlug(ctx context.Context, p models.Product) error {
	existing, err := s.ProductStore.Get(ctx, p.Slug)
	if err == nil && existing.Id != p.Id {
		return store.ErrDuplicateId
	}
	return nil
}

func (s slugIndexedStore) Create(ctx context.Context, p models.Product) error {
	if err := s.checkSlug(ctx, p); err != nil {
		return err
	}
	return s.ProductStore.Create(ctx, p)
}

func (s slugIndexedStore) Replace(ctx context.Context, p models.Product) error {
	if err := s.checkSlug(ctx, p); err != nil {
		return err
	}
	return s.ProductStore.Replace(ctx, p)
}

func TestProductsWithSameName(t *testing.T) {
	ctx := context.Background()
	seed, err := store.DefaultCatalog()
	require.NoError(t, err)
	svc := NewProductService(slugIndexedStore{store.NewMemoryProductStore(seed)}, cache.NopPublisher{}, nil)

	first, err := svc.CreateProduct(ctx, productRequest())
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, productRequest())
	require.NoError(t, err)

	assert.Equal(t, "linen-shirt", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Equal(t, models.SuffixedSlug("linen-shirt", second.Id), second.Slug)

	got, err := svc.GetProduct(ctx, second.Slug)
	require.NoError(t, err)
	assert.Equal(t, second.Id, got.Id)

	t.Run("rename onto a taken name", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "3", models.ProductUpdate{Name: ptr("Classic Cotton T-Shirt")})
		require.NoError(t, err)
		assert.Equal(t, models.SuffixedSlug("classic-cotton-t-shirt", "3"), p.Slug)
	})

	t.Run("renaming to its own name keeps the slug", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, first.Id, models.ProductUpdate{Name: ptr("Linen Shirt")})
		require.NoError(t, err)
		assert.Equal(t, "linen-shirt", p.Slug)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupProducts(t)

	t.Run("partial merge recomputes derived fields", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "1", models.ProductUpdate{
			Price: ptr(24.99),
			Sizes: &[]models.SizeStock{{Size: models.SizeS, Stock: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, 24.99, p.Price)
		assert.Equal(t, 1, p.TotalStock)
		assert.Equal(t, "Classic Cotton T-Shirt", p.Name)
		assert.Equal(t, 4.5, p.Rating.Average)
	})

	t.Run("empty sizes give zero stock", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "3", models.ProductUpdate{Sizes: &[]models.SizeStock{}})
		require.NoError(t, err)
		assert.Equal(t, 0, p.TotalStock)
	})

	t.Run("rename changes the slug", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "2", models.ProductUpdate{Name: ptr("Breezy Summer Dress")})
		require.NoError(t, err)
		assert.Equal(t, "breezy-summer-dress", p.Slug)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, "nope", models.ProductUpdate{Price: ptr(1.0)})
		assert.ErrorIs(t, err, store.ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc, publisher := setupProducts(t)

	require.NoError(t, svc.DeleteProduct(ctx, "3"))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, "3"), store.ErrProductNotFound)
	assert.Contains(t, publisher.types(), cache.InvalidateProduct)

	page, err := svc.ListProducts(ctx, catalog.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestAddReview(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupProducts(t)

	p, err := svc.AddReview(ctx, "1", "shopper@example.com", models.ReviewRequest{Rating: 3, Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Rating.Count)
	assert.Equal(t, 4.0, p.Rating.Average)
	assert.Equal(t, "shopper@example.com", p.Reviews[2].User)

	_, err = svc.AddReview(ctx, "1", "x", models.ReviewRequest{Rating: 6})
	_, ok := models.IsValidationError(err)
	assert.True(t, ok)
}

func TestAddImage(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupProducts(t)

	p, err := svc.AddImage(ctx, "1", []byte("img"), "Front", true)
	require.NoError(t, err)
	require.Len(t, p.Images, 4)
	assert.Equal(t, "https://cdn.example.com/p.jpg", p.PrimaryImage())
	for _, img := range p.Images[:3] {
		assert.False(t, img.IsPrimary)
	}

	noMedia := NewProductService(store.NewMemoryProductStore(nil), cache.NopPublisher{}, nil)
	_, err = noMedia.AddImage(ctx, "1", nil, "", false)
	assert.ErrorIs(t, err, ErrMediaDisabled)

	failing := NewProductService(store.NewMemoryProductStore([]models.Product{{Id: "1"}}), cache.NopPublisher{}, &fakeUploader{err: errors.New("quota")})
	_, err = failing.AddImage(ctx, "1", nil, "", false)
	assert.Error(t, err)
}

func orderRequest() models.OrderRequest {
	return models.OrderRequest{
		Items: []models.CartItem{{Id: "1", Name: "Classic Cotton T-Shirt", Price: 20, Size: "M", Color: "White", Quantity: 2}},
		Shipping: models.ShippingInfo{
			FirstName: "Nour", LastName: "Adel", Email: "nour@example.com", Phone: "0100",
			Address: "1 Nile St", City: "Cairo", State: "Cairo", ZipCode: "11511", Country: models.DefaultCountry,
		},
		Payment: models.OrderPayment{Method: models.PaymentPaypal},
		Total:   1,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc := NewOrderService(store.NewMemoryOrderStore(), publisher)

	order, err := svc.CreateOrder(ctx, "user-1", orderRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, order.Id)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, 40.0, order.Subtotal)
	assert.Equal(t, 5.99, order.ShippingFee)
	assert.Equal(t, 3.2, order.Tax)
	assert.Equal(t, 49.19, order.Total)
	assert.Equal(t, []cache.MessageType{cache.OrderCreated}, publisher.types())

	got, err := svc.GetOrder(ctx, order.Id)
	require.NoError(t, err)
	assert.Equal(t, order.Total, got.Total)

	mine, err := svc.ListUserOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	t.Run("validation", func(t *testing.T) {
		req := orderRequest()
		req.Items = nil
		req.Payment.Method = "barter"
		req.Shipping.Email = "not-an-email"

		_, err := svc.CreateOrder(ctx, "", req)
		verr, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "items")
		assert.Contains(t, verr.Fields, "payment.method")
		assert.Equal(t, models.MsgInvalidEmail, verr.Fields["shipping.email"])
	})
}
