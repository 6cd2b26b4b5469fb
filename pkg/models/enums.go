package models

type Category string

const (
	CategoryMenShirts    Category = "men-shirts"
	CategoryMenPants     Category = "men-pants"
	CategoryMenJackets   Category = "men-jackets"
	CategoryMenShoes     Category = "men-shoes"
	CategoryWomenDresses Category = "women-dresses"
	CategoryWomenTops    Category = "women-tops"
	CategoryWomenPants   Category = "women-pants"
	CategoryWomenShoes   Category = "women-shoes"
	CategoryAccessories  Category = "accessories"
	CategoryBags         Category = "bags"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryMenShirts,
		CategoryMenPants,
		CategoryMenJackets,
		CategoryMenShoes,
		CategoryWomenDresses,
		CategoryWomenTops,
		CategoryWomenPants,
		CategoryWomenShoes,
		CategoryAccessories,
		CategoryBags:
		return true
	default:
		return false
	}
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
	Size28  Size = "28"
	Size30  Size = "30"
	Size32  Size = "32"
	Size34  Size = "34"
	Size36  Size = "36"
	Size38  Size = "38"
	Size40  Size = "40"
	Size42  Size = "42"
)

func (s Size) IsValid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL,
		Size28, Size30, Size32, Size34, Size36, Size38, Size40, Size42:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentVodafoneCash PaymentMethod = "vodafone_cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentPaypal, PaymentVodafoneCash:
		return true
	default:
		return false
	}
}

type OrderStatus string

const (
	OrderStatusPlaced OrderStatus = "placed"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)
