package models

// CartItem is one cart line. Its identity is (Id, Size, Color).
type CartItem struct {
	Id       string  `bson:"id" json:"id" validate:"required"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price" validate:"gte=0"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
	Size     string  `bson:"size" json:"size"`
	Color    string  `bson:"color" json:"color"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gte=1"`
}

// Matches reports whether the line has the given composite identity.
func (c CartItem) Matches(id, size, color string) bool {
	return c.Id == id && c.Size == size && c.Color == color
}

type CartItemKey struct {
	Id    string `json:"id" form:"id" validate:"required"`
	Size  string `json:"size" form:"size"`
	Color string `json:"color" form:"color"`
}

type CartQuantityRequest struct {
	Id       string `json:"id" validate:"required"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}
