package catalog

import (
	"sort"
	"strings"

	"citystore-api-io/api/pkg/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page is one window of a filtered, sorted result.
type Page struct {
	Items []models.Product
	Count int
	Total int
	Page  int
	Pages int
}

type predicate func(p *models.Product) bool

// Run filters, sorts and paginates products. The input slice is not modified.
func Run(products []models.Product, q Query) Page {
	q = q.Normalize()
	matched := Filter(products, q)
	SortProducts(matched, q.Sort)
	return Paginate(matched, q)
}

// Filter applies the stages in order: search, category, brand, price, size, color.
func Filter(products []models.Product, q Query) []models.Product {
	preds := predicates(q)
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if matchesAll(&products[i], preds) {
			out = append(out, products[i])
		}
	}
	return out
}

func matchesAll(p *models.Product, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(p) {
			return false
		}
	}
	return true
}

func predicates(q Query) []predicate {
	var preds []predicate

	if q.Search != "" {
		term := strings.ToLower(q.Search)
		preds = append(preds, func(p *models.Product) bool {
			if strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) {
				return true
			}
			for _, tag := range p.Tags {
				if strings.Contains(strings.ToLower(tag), term) {
					return true
				}
			}
			return false
		})
	}

	if q.Category != "" {
		preds = append(preds, func(p *models.Product) bool {
			return p.Category == q.Category
		})
	}

	if q.Brand != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.EqualFold(p.Brand, q.Brand)
		})
	}

	if q.MinPrice != nil {
		min := *q.MinPrice
		preds = append(preds, func(p *models.Product) bool {
			return p.Price >= min
		})
	}
	if q.MaxPrice != nil {
		max := *q.MaxPrice
		preds = append(preds, func(p *models.Product) bool {
			return p.Price <= max
		})
	}

	if q.Size != "" {
		preds = append(preds, func(p *models.Product) bool {
			return p.SizeAvailable(q.Size)
		})
	}

	if q.Color != "" {
		color := strings.ToLower(q.Color)
		preds = append(preds, func(p *models.Product) bool {
			for _, c := range p.Colors {
				if strings.Contains(strings.ToLower(c.Color), color) {
					return true
				}
			}
			return false
		})
	}

	return preds
}

// SortProducts orders products in place. The sort is stable and unknown keys
// keep the current order.
func SortProducts(products []models.Product, key SortKey) {
	var less func(a, b *models.Product) bool

	switch key {
	case SortPriceLow:
		less = func(a, b *models.Product) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b *models.Product) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b *models.Product) bool { return a.Rating.Average > b.Rating.Average }
	case SortNewest:
		less = func(a, b *models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortName:
		// Collators keep scratch buffers, so one per sort.
		col := collate.New(language.English)
		less = func(a, b *models.Product) bool { return col.CompareString(a.Name, b.Name) < 0 }
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(&products[i], &products[j])
	})
}

// Paginate cuts the [offset, offset+limit) window. Pages past the end are empty.
func Paginate(products []models.Product, q Query) Page {
	q = q.Normalize()
	total := len(products)

	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	items := make([]models.Product, end-start)
	copy(items, products[start:end])

	return Page{
		Items: items,
		Count: len(items),
		Total: total,
		Page:  q.Page,
		Pages: PageCount(total, q.Limit),
	}
}

// Featured keeps products that are both featured and active, in order.
func Featured(products []models.Product) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if p.IsFeatured && p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
