package models

import "time"

type OrderPayment struct {
	Method PaymentMethod `bson:"method" json:"method"`
}

// OrderRequest is the checkout submission. Payment carries the method tag only.
type OrderRequest struct {
	Items    []CartItem   `json:"items" validate:"required,min=1,dive"`
	Shipping ShippingInfo `json:"shipping"`
	Payment  OrderPayment `json:"payment"`
	Total    float64      `json:"total"`
	Notes    string       `json:"notes" validate:"max=1000"`
}

type Order struct {
	Id          string       `bson:"_id" json:"id"`
	UserId      string       `bson:"userId,omitempty" json:"userId,omitempty"`
	Items       []CartItem   `bson:"items" json:"items"`
	Shipping    ShippingInfo `bson:"shipping" json:"shipping"`
	Payment     OrderPayment `bson:"payment" json:"payment"`
	Subtotal    float64      `bson:"subtotal" json:"subtotal"`
	ShippingFee float64      `bson:"shippingFee" json:"shippingFee"`
	Tax         float64      `bson:"tax" json:"tax"`
	Total       float64      `bson:"total" json:"total"`
	Notes       string       `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      OrderStatus  `bson:"status" json:"status"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
}
