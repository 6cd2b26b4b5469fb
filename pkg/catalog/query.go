package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"citystore-api-io/api/pkg/models"
)

type SortKey string

const (
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortName      SortKey = "name"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// Query holds the catalog listing parameters. Zero values mean "not filtered".
type Query struct {
	Search   string
	Category models.Category
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Size     models.Size
	Color    string
	Sort     SortKey
	Page     int
	Limit    int
}

// ParseQuery reads the GET /products parameters. The search term is matched
// as given. Price bounds that are not numbers are rejected; page and limit are
// coerced and limit is capped at MaxLimit.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Search:   values.Get("search"),
		Category: models.Category(values.Get("category")),
		Brand:    values.Get("brand"),
		Size:     models.Size(values.Get("size")),
		Color:    values.Get("color"),
		Sort:     SortKey(values.Get("sort")),
		Page:     atoiOr(values.Get("page"), DefaultPage),
		Limit:    atoiOr(values.Get("limit"), DefaultLimit),
	}

	fields := map[string]string{}
	if raw := values.Get("minPrice"); raw != "" {
		if v, ok := parsePrice(raw); ok {
			q.MinPrice = &v
		} else {
			fields["minPrice"] = "must be a number"
		}
	}
	if raw := values.Get("maxPrice"); raw != "" {
		if v, ok := parsePrice(raw); ok {
			q.MaxPrice = &v
		} else {
			fields["maxPrice"] = "must be a number"
		}
	}
	if len(fields) > 0 {
		return Query{}, &models.ValidationError{Fields: fields}
	}

	return q.Normalize(), nil
}

// Normalize coerces page and limit into usable values.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// Offset is the index of the first item on the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageCount is ceil(total/limit).
func PageCount(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
