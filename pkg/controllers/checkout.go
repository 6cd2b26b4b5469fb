package controllers

import (
	"context"
	"net/http"
	"time"

	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/cart"
	"citystore-api-io/api/pkg/checkout"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// CheckoutController drives one checkout wizard per cart session. The wizard
// snapshot lives next to the cart under cart.KeyCheckoutState.
type CheckoutController struct {
	storage      cart.Storage
	orderService services.OrderService
	opts         checkout.Options
	timeout      time.Duration
}

func InitCheckoutController(storage cart.Storage, orderService services.OrderService, opts checkout.Options, timeout time.Duration) *CheckoutController {
	return &CheckoutController{
		storage:      storage,
		orderService: orderService,
		opts:         opts,
		timeout:      timeout,
	}
}

type checkoutSession struct {
	storage cart.Storage
	cart    *cart.Cart
	wizard  *checkout.Wizard
}

type checkoutView struct {
	checkout.State
	Cart cart.View `json:"cart"`
}

func (s *checkoutSession) view() checkoutView {
	return checkoutView{State: s.wizard.State(), Cart: s.cart.View()}
}

func (s *checkoutSession) save(ctx context.Context) error {
	return cart.WriteJSON(ctx, s.storage, cart.KeyCheckoutState, s.wizard.State())
}

// load restores the session's wizard, or starts one prefilled from the saved
// address and payment method, falling back to the signed in user's profile.
func (cc *CheckoutController) load(c *gin.Context, ctx context.Context) (*checkoutSession, bool) {
	storage, ok := sessionStorage(c, cc.storage)
	if !ok {
		return nil, false
	}

	userCart, err := cart.Open(ctx, storage)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	session := &checkoutSession{storage: storage, cart: userCart}

	var state checkout.State
	found, err := cart.ReadJSON(ctx, storage, cart.KeyCheckoutState, &state)
	var decodeErr *cart.DecodeError
	if errors.As(err, &decodeErr) {
		util.LogWarning("discarding unreadable checkout state: " + decodeErr.Error())
		found, err = false, nil
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if found {
		session.wizard = checkout.Restore(state, cc.opts)
		return session, true
	}

	wizard := checkout.New(cc.opts)
	if saved := userCart.ShippingAddress(); saved != nil {
		wizard.SetShipping(*saved)
	} else if claim, ok := middleware.Claims(c); ok {
		wizard.Prefill(claim.Profile())
	}
	if method := userCart.PaymentMethod(); method != "" {
		payment := wizard.Form().Payment
		payment.Method = method
		wizard.SetPayment(payment)
	}
	session.wizard = wizard
	return session, true
}

// finish persists the wizard and answers with its view, or with err when set.
func (cc *CheckoutController) finish(c *gin.Context, ctx context.Context, session *checkoutSession, status int, err error) {
	if saveErr := session.save(ctx); saveErr != nil {
		respondError(c, saveErr)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	util.HandleSuccess(c, status, "", session.view())
}

// GetCheckout handles GET /api/checkout/:session
func (cc *CheckoutController) GetCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", session.view())
	}
}

// UpdateShipping handles PUT /api/checkout/:session/shipping
func (cc *CheckoutController) UpdateShipping() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var shipping models.ShippingInfo
		if !bindJSON(c, &shipping) {
			return
		}

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		session.wizard.SetShipping(shipping)
		cc.finish(c, ctx, session, http.StatusOK, nil)
	}
}

// UpdatePayment handles PUT /api/checkout/:session/payment
func (cc *CheckoutController) UpdatePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var payment models.PaymentInfo
		if !bindJSON(c, &payment) {
			return
		}

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		session.wizard.SetPayment(payment)
		cc.finish(c, ctx, session, http.StatusOK, nil)
	}
}

// UpdateNotes handles PUT /api/checkout/:session/notes
func (cc *CheckoutController) UpdateNotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		var req struct {
			Notes string `json:"notes" validate:"max=1000"`
		}
		if !bindJSON(c, &req) {
			return
		}
		if err := models.ValidateStruct(req, ""); err != nil {
			respondError(c, err)
			return
		}

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		session.wizard.SetNotes(req.Notes)
		cc.finish(c, ctx, session, http.StatusOK, nil)
	}
}

// NextStep handles POST /api/checkout/:session/next. Leaving a step saves its
// answers to the cart so later checkouts start from them.
func (cc *CheckoutController) NextStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		from := session.wizard.Step()
		err := session.wizard.Next()
		if err == nil {
			form := session.wizard.Form()
			switch from {
			case checkout.StepShipping:
				err = session.cart.SaveShippingAddress(ctx, form.Shipping)
			case checkout.StepPayment:
				err = session.cart.SavePaymentMethod(ctx, form.Payment.Method)
			}
		}

		cc.finish(c, ctx, session, http.StatusOK, err)
	}
}

// PreviousStep handles POST /api/checkout/:session/back
func (cc *CheckoutController) PreviousStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		session.wizard.Back()
		cc.finish(c, ctx, session, http.StatusOK, nil)
	}
}

// PlaceOrder handles POST /api/checkout/:session/place. On failure the
// wizard stays on review and the cart keeps its items.
func (cc *CheckoutController) PlaceOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		order, err := session.wizard.PlaceOrder(ctx, session.cart, userID(c), cc.orderService)
		if saveErr := session.save(ctx); saveErr != nil {
			util.LogError("failed to save checkout state", saveErr)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Order placed successfully", gin.H{
			"order":    order,
			"checkout": session.view(),
		})
	}
}

// ResetCheckout handles DELETE /api/checkout/:session
func (cc *CheckoutController) ResetCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c, cc.timeout)
		defer cancel()

		storage, ok := sessionStorage(c, cc.storage)
		if !ok {
			return
		}
		if err := storage.Delete(ctx, cart.KeyCheckoutState); err != nil {
			respondError(c, err)
			return
		}

		session, ok := cc.load(c, ctx)
		if !ok {
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Checkout reset", session.view())
	}
}
