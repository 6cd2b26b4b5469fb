package store

import (
	_ "embed"
	"encoding/json"
	"os"
	"time"

	"citystore-api-io/api/pkg/models"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Products []map[string]any `yaml:"products"`
}

// DefaultCatalog returns the built in starter products.
func DefaultCatalog() ([]models.Product, error) {
	return ParseSeed(defaultCatalog)
}

// LoadSeedFile reads products from a YAML file shaped like the built in catalog.
func LoadSeedFile(path string) ([]models.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed file %s", path)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes YAML using the product JSON field names. Missing slugs and
// timestamps are filled in and derived fields are recomputed.
func ParseSeed(raw []byte) ([]models.Product, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(err, "parse seed yaml")
	}

	// Round trip through JSON so the YAML keys follow the json tags.
	doc, err := json.Marshal(file.Products)
	if err != nil {
		return nil, errors.Wrap(err, "convert seed")
	}
	var products []models.Product
	if err := json.Unmarshal(doc, &products); err != nil {
		return nil, errors.Wrap(err, "decode seed products")
	}

	now := time.Now().UTC()
	for i := range products {
		p := &products[i]
		if p.Id == "" {
			return nil, errors.Errorf("seed product %d has no id", i)
		}
		if p.Slug == "" {
			p.Slug = slug.Make(p.Name)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		for j := range p.Reviews {
			if p.Reviews[j].CreatedAt.IsZero() {
				p.Reviews[j].CreatedAt = p.CreatedAt
			}
		}
		if p.Reviews == nil {
			p.Reviews = []models.Review{}
		}
		p.RecomputeDerived()
	}
	return products, nil
}
