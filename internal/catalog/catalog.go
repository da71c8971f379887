// Package catalog is the read-only product view a register sells from.
package catalog

import (
	"iter"
	"slices"
	"strings"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cart"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/google/uuid"
)

// AllCategories matches products of every category.
const AllCategories = "all"

type Filter struct {
	Query    string
	Category string
}

type Catalog struct {
	products   []models.Product
	categories []models.Category
	byID       map[uuid.UUID]int
}

func New(products []models.Product, categories []models.Category) *Catalog {
	c := &Catalog{
		products:   slices.Clone(products),
		categories: slices.Clone(categories),
		byID:       make(map[uuid.UUID]int, len(products)),
	}

	for i, p := range c.products {
		c.byID[p.ID] = i
	}

	return c
}

// Search yields the products matching f in catalog order. The query is a
// case-insensitive substring of name, SKU or barcode. The sequence can be
// ranged over any number of times.
func (c *Catalog) Search(f Filter) iter.Seq[models.Product] {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	return func(yield func(models.Product) bool) {
		for _, p := range c.products {
			if !inCategory(p, category) || !matches(p, query) {
				continue
			}

			if !yield(p) {
				return
			}
		}
	}
}

func (c *Catalog) Product(id uuid.UUID) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}

	return c.products[i], true
}

// AddToCart adds one unit of the product to ct.
func (c *Catalog) AddToCart(ct *cart.Cart, productID uuid.UUID) bool {
	p, ok := c.Product(productID)
	if !ok {
		return false
	}

	return ct.AddItem(p, 1)
}

func (c *Catalog) Categories() []models.Category {
	return slices.Clone(c.categories)
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func inCategory(p models.Product, category string) bool {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return true
	}

	return p.CategoryID.String() == strings.ToLower(category)
}

func matches(p models.Product, query string) bool {
	if query == "" {
		return true
	}

	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.SKU), query) ||
		strings.Contains(strings.ToLower(p.Barcode), query)
}
