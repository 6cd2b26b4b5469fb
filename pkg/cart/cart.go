package cart

import (
	"context"

	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/util"

	"github.com/pkg/errors"
)

// Cart is a set of line items keyed by (id, size, color). Every mutation is
// written to storage before it is applied in memory, so a failed write leaves
// the cart as it was.
type Cart struct {
	storage  Storage
	items    []models.CartItem
	shipping *models.ShippingInfo
	payment  models.PaymentMethod
}

// View is the serialisable state of a cart.
type View struct {
	Items           []models.CartItem    `json:"items"`
	TotalItems      int                  `json:"totalItems"`
	TotalPrice      float64              `json:"totalPrice"`
	Summary         Summary              `json:"summary"`
	ShippingAddress *models.ShippingInfo `json:"shippingAddress,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod,omitempty"`
}

// Open restores a cart from storage. Entries that cannot be decoded are
// dropped with a warning and the cart starts without them.
func Open(ctx context.Context, storage Storage) (*Cart, error) {
	c := &Cart{storage: storage, items: []models.CartItem{}}

	var items []models.CartItem
	if _, err := ReadJSON(ctx, storage, KeyItems, &items); err != nil {
		if !isDecodeError(err) {
			return nil, err
		}
		util.LogWarning("discarding unreadable cart items: " + err.Error())
	} else if items != nil {
		c.items = items
	}

	var shipping models.ShippingInfo
	found, err := ReadJSON(ctx, storage, KeyShippingAddress, &shipping)
	if err != nil && !isDecodeError(err) {
		return nil, err
	}
	if found {
		c.shipping = &shipping
	}

	var method models.PaymentMethod
	if _, err := ReadJSON(ctx, storage, KeyPaymentMethod, &method); err != nil && !isDecodeError(err) {
		return nil, err
	}
	c.payment = method

	return c, nil
}

func isDecodeError(err error) bool {
	var derr *DecodeError
	return errors.As(err, &derr)
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []models.CartItem {
	return cloneItems(c.items)
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() float64 {
	return Subtotal(c.items).InexactFloat64()
}

func (c *Cart) Summary() Summary {
	return SummarizeItems(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) ShippingAddress() *models.ShippingInfo {
	if c.shipping == nil {
		return nil
	}
	s := *c.shipping
	return &s
}

func (c *Cart) PaymentMethod() models.PaymentMethod {
	return c.payment
}

func (c *Cart) View() View {
	return View{
		Items:           c.Items(),
		TotalItems:      c.TotalItems(),
		TotalPrice:      c.TotalPrice(),
		Summary:         c.Summary(),
		ShippingAddress: c.ShippingAddress(),
		PaymentMethod:   c.payment,
	}
}

// Add merges the item into an existing line with the same identity or appends it.
func (c *Cart) Add(ctx context.Context, item models.CartItem) error {
	if err := models.ValidateStruct(item, ""); err != nil {
		return err
	}

	next := cloneItems(c.items)
	merged := false
	for i := range next {
		if next[i].Matches(item.Id, item.Size, item.Color) {
			next[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, item)
	}
	return c.commit(ctx, next)
}

// Remove deletes the line with the identity. Missing lines are a no-op.
func (c *Cart) Remove(ctx context.Context, id, size, color string) error {
	next := make([]models.CartItem, 0, len(c.items))
	for _, it := range c.items {
		if !it.Matches(id, size, color) {
			next = append(next, it)
		}
	}
	return c.commit(ctx, next)
}

// SetQuantity replaces the line quantity. A quantity below one removes the line.
func (c *Cart) SetQuantity(ctx context.Context, id, size, color string, quantity int) error {
	if quantity < 1 {
		return c.Remove(ctx, id, size, color)
	}

	next := cloneItems(c.items)
	for i := range next {
		if next[i].Matches(id, size, color) {
			next[i].Quantity = quantity
		}
	}
	return c.commit(ctx, next)
}

// Clear empties the cart and erases the persisted lines.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.storage.Delete(ctx, KeyItems); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	c.items = []models.CartItem{}
	return nil
}

func (c *Cart) SaveShippingAddress(ctx context.Context, address models.ShippingInfo) error {
	if err := WriteJSON(ctx, c.storage, KeyShippingAddress, address); err != nil {
		return errors.Wrap(err, "save shipping address")
	}
	c.shipping = &address
	return nil
}

func (c *Cart) SavePaymentMethod(ctx context.Context, method models.PaymentMethod) error {
	if !method.IsValid() {
		return models.NewFieldError("paymentMethod", "is not a valid payment method")
	}
	if err := WriteJSON(ctx, c.storage, KeyPaymentMethod, method); err != nil {
		return errors.Wrap(err, "save payment method")
	}
	c.payment = method
	return nil
}

func (c *Cart) commit(ctx context.Context, next []models.CartItem) error {
	if err := WriteJSON(ctx, c.storage, KeyItems, next); err != nil {
		return errors.Wrap(err, "save cart")
	}
	c.items = next
	return nil
}

func cloneItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
