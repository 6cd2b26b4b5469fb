package controllers

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/pkg/cart"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var (
	sessionPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)
	errInvalidSession = errors.New("invalid cart session")
)

// CartController serves browser cart sessions. Each session id namespaces the
// same keys a browser keeps in local storage.
type CartController struct {
	storage cart.Storage
	timeout time.Duration
}

func InitCartController(storage cart.Storage, timeout time.Duration) *CartController {
	return &CartController{
		storage: storage,
		timeout: timeout,
	}
}

// sessionStorage validates the :session param and scopes the storage to it.
func sessionStorage(c *gin.Context, storage cart.Storage) (cart.Storage, bool) {
	session := c.Param("session")
	if !sessionPattern.MatchString(session) {
		util.HandleError(c, http.StatusBadRequest, errInvalidSession)
		return nil, false
	}
	return cart.Namespace(storage, "session:"+session), true
}

func (cc *CartController) open(c *gin.Context, ctx context.Context) (*cart.Cart, bool) {
	storage, ok := sessionStorage(c, cc.storage)
	if !ok {
		return nil, false
	}

	userCart, err := cart.Open(ctx, storage)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return userCart, true
}

// CreateSession handles POST /api/carts
func (cc *CartController) CreateSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.GenerateSecureToken(16)
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "", gin.H{"session": session})
	}
}

// GetCart handles GET /api/carts/:session
func (cc *CartController) GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", userCart.View())
	}
}

// AddCartItem handles POST /api/carts/:session/items
func (cc *CartController) AddCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var item models.CartItem
		if !bindJSON(c, &item) {
			return
		}

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.Add(ctx, item); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Item added to cart", userCart.View())
	}
}

// UpdateCartItemQuantity handles PUT /api/carts/:session/items. A quantity
// below one removes the line.
func (cc *CartController) UpdateCartItemQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var req models.CartQuantityRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := models.ValidateStruct(req, ""); err != nil {
			respondError(c, err)
			return
		}

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.SetQuantity(ctx, req.Id, req.Size, req.Color, req.Quantity); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Cart updated", userCart.View())
	}
}

// RemoveCartItem handles DELETE /api/carts/:session/items?id=&size=&color=
func (cc *CartController) RemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var key models.CartItemKey
		if err := c.ShouldBindQuery(&key); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := models.ValidateStruct(key, ""); err != nil {
			respondError(c, err)
			return
		}

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.Remove(ctx, key.Id, key.Size, key.Color); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Item removed from cart", userCart.View())
	}
}

// ClearCart handles DELETE /api/carts/:session
func (cc *CartController) ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.Clear(ctx); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Cart cleared", userCart.View())
	}
}

// SaveShippingAddress handles PUT /api/carts/:session/shipping-address
func (cc *CartController) SaveShippingAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var address models.ShippingInfo
		if !bindJSON(c, &address) {
			return
		}

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.SaveShippingAddress(ctx, address); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Shipping address saved", userCart.View())
	}
}

// SavePaymentMethod handles PUT /api/carts/:session/payment-method
func (cc *CartController) SavePaymentMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var req struct {
			Method models.PaymentMethod `json:"method"`
		}
		if !bindJSON(c, &req) {
			return
		}

		userCart, ok := cc.open(c, ctx)
		if !ok {
			return
		}

		if err := userCart.SavePaymentMethod(ctx, req.Method); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Payment method saved", userCart.View())
	}
}
