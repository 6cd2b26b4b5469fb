package controllers

import (
	"net/http"
	"time"

	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService services.OrderService
	timeout      time.Duration
}

func InitOrderController(orderService services.OrderService, timeout time.Duration) *OrderController {
	return &OrderController{
		orderService: orderService,
		timeout:      timeout,
	}
}

// CreateOrder handles POST /api/orders. The caller owns the order.
func (oc *OrderController) CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, oc.timeout)
		defer cancel()

		var req models.OrderRequest
		if !bindJSON(c, &req) {
			return
		}

		order, err := oc.orderService.CreateOrder(ctx, userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Order placed successfully", order)
	}
}

// GetOrder handles GET /api/orders/:id. An order is only visible to its owner
// and to admins; anyone else gets a 404.
func (oc *OrderController) GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, oc.timeout)
		defer cancel()

		order, err := oc.orderService.GetOrder(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		claim, ok := middleware.Claims(c)
		if !ok || (claim.Id != order.UserId && !claim.IsAdmin()) {
			respondError(c, store.ErrOrderNotFound)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", order)
	}
}

// GetMyOrders handles GET /api/orders/mine
func (oc *OrderController) GetMyOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, oc.timeout)
		defer cancel()

		orders, err := oc.orderService.ListUserOrders(ctx, userID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccessMeta(c, http.StatusOK, orders, len(orders), nil)
	}
}

// GetOrders handles GET /api/orders (admin)
func (oc *OrderController) GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, oc.timeout)
		defer cancel()

		orders, err := oc.orderService.ListOrders(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccessMeta(c, http.StatusOK, orders, len(orders), nil)
	}
}
