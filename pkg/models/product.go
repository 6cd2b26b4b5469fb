package models

import (
	"math"
	"strings"
	"time"
)

type SizeStock struct {
	Size  Size `bson:"size" json:"size" validate:"required,product_size"`
	Stock int  `bson:"stock" json:"stock" validate:"gte=0"`
}

type ColorVariant struct {
	Color     string   `bson:"color" json:"color" validate:"required"`
	ColorCode string   `bson:"colorCode" json:"colorCode" validate:"required"`
	Images    []string `bson:"images" json:"images"`
}

type ProductImage struct {
	Url       string `bson:"url" json:"url" validate:"required"`
	Alt       string `bson:"alt" json:"alt"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

type Dimensions struct {
	Length float64 `bson:"length" json:"length" validate:"gte=0"`
	Width  float64 `bson:"width" json:"width" validate:"gte=0"`
	Height float64 `bson:"height" json:"height" validate:"gte=0"`
}

type Seo struct {
	MetaTitle       string   `bson:"metaTitle" json:"metaTitle"`
	MetaDescription string   `bson:"metaDescription" json:"metaDescription"`
	Keywords        []string `bson:"keywords" json:"keywords"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Review struct {
	User      string    `bson:"user" json:"user"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type Product struct {
	Id               string         `bson:"_id" json:"id"`
	Name             string         `bson:"name" json:"name"`
	Slug             string         `bson:"slug" json:"slug"`
	Description      string         `bson:"description" json:"description"`
	Price            float64        `bson:"price" json:"price"`
	OriginalPrice    *float64       `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Discount         float64        `bson:"discount" json:"discount"`
	Category         Category       `bson:"category" json:"category"`
	Subcategory      string         `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Brand            string         `bson:"brand" json:"brand"`
	Sizes            []SizeStock    `bson:"sizes" json:"sizes"`
	Colors           []ColorVariant `bson:"colors" json:"colors"`
	Images           []ProductImage `bson:"images" json:"images"`
	Features         []string       `bson:"features" json:"features"`
	Materials        []string       `bson:"materials" json:"materials"`
	CareInstructions []string       `bson:"careInstructions" json:"careInstructions"`
	Weight           *float64       `bson:"weight,omitempty" json:"weight,omitempty"`
	Dimensions       *Dimensions    `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Rating           Rating         `bson:"rating" json:"rating"`
	Reviews          []Review       `bson:"reviews" json:"reviews"`
	TotalStock       int            `bson:"totalStock" json:"totalStock"`
	IsActive         bool           `bson:"isActive" json:"isActive"`
	IsFeatured       bool           `bson:"isFeatured" json:"isFeatured"`
	Tags             []string       `bson:"tags" json:"tags"`
	Seo              *Seo           `bson:"seo,omitempty" json:"seo,omitempty"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// TotalStock sums the per-size stock.
func TotalStock(sizes []SizeStock) int {
	total := 0
	for _, s := range sizes {
		total += s.Stock
	}
	return total
}

// ComputeRating returns the review mean rounded to one decimal and the review count.
func ComputeRating(reviews []Review) Rating {
	if len(reviews) == 0 {
		return Rating{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return Rating{
		Average: math.Round(avg*10) / 10,
		Count:   len(reviews),
	}
}

// RecomputeDerived resets totalStock and rating from sizes and reviews.
// Every write path calls it before the product reaches a store.
func (p *Product) RecomputeDerived() {
	p.TotalStock = TotalStock(p.Sizes)
	p.Rating = ComputeRating(p.Reviews)
}

// SizeAvailable reports whether the size token has stock left.
func (p *Product) SizeAvailable(size Size) bool {
	for _, s := range p.Sizes {
		if s.Size == size && s.Stock > 0 {
			return true
		}
	}
	return false
}

// PrimaryImage returns the primary image url, falling back to the first image.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.Url
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].Url
	}
	return ""
}

// SuffixedSlug disambiguates a slug already used by another product with a
// short prefix of the product id.
func SuffixedSlug(base, id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return base + "-" + short
}

// ProductRequest is the admin create payload.
type ProductRequest struct {
	Name             string         `json:"name" validate:"required,max=100"`
	Description      string         `json:"description" validate:"required,max=1000"`
	Price            *float64       `json:"price" validate:"required,gte=0"`
	OriginalPrice    *float64       `json:"originalPrice" validate:"omitempty,gte=0"`
	Discount         float64        `json:"discount" validate:"gte=0,lte=100"`
	Category         Category       `json:"category" validate:"required,product_category"`
	Subcategory      string         `json:"subcategory"`
	Brand            string         `json:"brand" validate:"required"`
	Sizes            []SizeStock    `json:"sizes" validate:"dive"`
	Colors           []ColorVariant `json:"colors" validate:"dive"`
	Images           []ProductImage `json:"images" validate:"dive"`
	Features         []string       `json:"features"`
	Materials        []string       `json:"materials"`
	CareInstructions []string       `json:"careInstructions"`
	Weight           *float64       `json:"weight" validate:"omitempty,gte=0"`
	Dimensions       *Dimensions    `json:"dimensions"`
	IsActive         *bool          `json:"isActive"`
	IsFeatured       bool           `json:"isFeatured"`
	Tags             []string       `json:"tags"`
	Seo              *Seo           `json:"seo"`
}

// ToProduct builds a product without id, slug or timestamps.
func (r ProductRequest) ToProduct() Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	var price float64
	if r.Price != nil {
		price = *r.Price
	}

	return Product{
		Name:             r.Name,
		Description:      r.Description,
		Price:            price,
		OriginalPrice:    r.OriginalPrice,
		Discount:         r.Discount,
		Category:         r.Category,
		Subcategory:      r.Subcategory,
		Brand:            r.Brand,
		Sizes:            r.Sizes,
		Colors:           r.Colors,
		Images:           r.Images,
		Features:         r.Features,
		Materials:        r.Materials,
		CareInstructions: r.CareInstructions,
		Weight:           r.Weight,
		Dimensions:       r.Dimensions,
		Reviews:          []Review{},
		IsActive:         active,
		IsFeatured:       r.IsFeatured,
		Tags:             r.Tags,
		Seo:              r.Seo,
	}
}

// ProductUpdate is the admin partial update payload; nil fields are left untouched.
type ProductUpdate struct {
	Name             *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Description      *string         `json:"description" validate:"omitempty,min=1,max=1000"`
	Price            *float64        `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice    *float64        `json:"originalPrice" validate:"omitempty,gte=0"`
	Discount         *float64        `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Category         *Category       `json:"category" validate:"omitempty,product_category"`
	Subcategory      *string         `json:"subcategory"`
	Brand            *string         `json:"brand" validate:"omitempty,min=1"`
	Sizes            *[]SizeStock    `json:"sizes" validate:"omitempty,dive"`
	Colors           *[]ColorVariant `json:"colors" validate:"omitempty,dive"`
	Images           *[]ProductImage `json:"images" validate:"omitempty,dive"`
	Features         *[]string       `json:"features"`
	Materials        *[]string       `json:"materials"`
	CareInstructions *[]string       `json:"careInstructions"`
	Weight           *float64        `json:"weight" validate:"omitempty,gte=0"`
	Dimensions       *Dimensions     `json:"dimensions"`
	IsActive         *bool           `json:"isActive"`
	IsFeatured       *bool           `json:"isFeatured"`
	Tags             *[]string       `json:"tags"`
	Seo              *Seo            `json:"seo"`
}

// ApplyTo merges the set fields over p. Derived fields are not touched here.
func (u ProductUpdate) ApplyTo(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.OriginalPrice != nil {
		p.OriginalPrice = u.OriginalPrice
	}
	if u.Discount != nil {
		p.Discount = *u.Discount
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Subcategory != nil {
		p.Subcategory = *u.Subcategory
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Sizes != nil {
		p.Sizes = *u.Sizes
	}
	if u.Colors != nil {
		p.Colors = *u.Colors
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
	if u.Features != nil {
		p.Features = *u.Features
	}
	if u.Materials != nil {
		p.Materials = *u.Materials
	}
	if u.CareInstructions != nil {
		p.CareInstructions = *u.CareInstructions
	}
	if u.Weight != nil {
		p.Weight = u.Weight
	}
	if u.Dimensions != nil {
		p.Dimensions = u.Dimensions
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.Seo != nil {
		p.Seo = u.Seo
	}
}
