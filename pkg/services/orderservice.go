package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"citystore-api-io/api/internal/cache"
	"citystore-api-io/api/pkg/cart"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// OrderServiceImpl implements the OrderService interface
type OrderServiceImpl struct {
	orders    store.OrderStore
	publisher cache.Publisher
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orders store.OrderStore, publisher cache.Publisher) OrderService {
	return &OrderServiceImpl{
		orders:    orders,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the request and recomputes the totals from the
// items. The client supplied total is only compared, never trusted.
func (svc *OrderServiceImpl) CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error) {
	fields := map[string]string{}
	if verr, ok := models.IsValidationError(models.ValidateStruct(req, "")); ok {
		fields = verr.Fields
	}
	if !req.Payment.Method.IsValid() {
		fields["payment.method"] = "is not a valid payment method"
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	summary := cart.SummarizeItems(req.Items)
	if req.Total != 0 && math.Abs(req.Total-summary.Total) > 0.005 {
		util.LogWarning(fmt.Sprintf("order total mismatch: client %.2f, server %.2f", req.Total, summary.Total))
	}

	order := models.Order{
		Id:          uuid.NewString(),
		UserId:      userID,
		Items:       req.Items,
		Shipping:    req.Shipping,
		Payment:     req.Payment,
		Subtotal:    summary.Subtotal,
		ShippingFee: summary.Shipping,
		Tax:         summary.Tax,
		Total:       summary.Total,
		Notes:       req.Notes,
		Status:      models.OrderStatusPlaced,
		CreatedAt:   svc.now(),
	}

	if err := svc.orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := svc.publisher.Publish(ctx, cache.OrderCreated, order.Id); err != nil {
		util.LogError("Failed to publish order event", err)
	}
	return &order, nil
}

// SubmitOrder lets the checkout wizard place orders.
func (svc *OrderServiceImpl) SubmitOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error) {
	return svc.CreateOrder(ctx, userID, req)
}

func (svc *OrderServiceImpl) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return svc.orders.Get(ctx, id)
}

func (svc *OrderServiceImpl) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return svc.orders.ListByUser(ctx, userID)
}

func (svc *OrderServiceImpl) ListOrders(ctx context.Context) ([]models.Order, error) {
	return svc.orders.List(ctx)
}
