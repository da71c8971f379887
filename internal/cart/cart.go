// Package cart holds the line items of one sale and keeps the derived totals
// current. A Cart is an owned value: every register constructs its own.
package cart

import (
	"slices"
	"sync"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Line struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  decimal.Decimal
}

func (l Line) pricingLine() pricing.Line {
	return pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity, Discount: l.Discount}
}

// Amount is the line total after its discount.
func (l Line) Amount() decimal.Decimal {
	return l.pricingLine().Amount()
}

// Snapshot is an immutable view handed to subscribers.
type Snapshot struct {
	Lines        []Line
	CartDiscount decimal.Decimal
	Totals       pricing.Totals
}

type Option func(*Cart)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(c *Cart) {
		c.taxRate = rate
	}
}

type Cart struct {
	mu           sync.Mutex
	lines        []Line
	cartDiscount decimal.Decimal
	totals       pricing.Totals
	taxRate      decimal.Decimal

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

func New(opts ...Option) *Cart {
	c := &Cart{
		taxRate:     pricing.DefaultTaxRate,
		subscribers: make(map[int]func(Snapshot)),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.recompute()

	return c
}

// AddItem increments the line for product, or appends a new one.
func (c *Cart) AddItem(product models.Product, quantity int) bool {
	if quantity < 1 || product.Price.IsNegative() {
		return false
	}

	return c.mutate(func() bool {
		if i := c.indexOf(product.ID); i >= 0 {
			c.lines[i].Quantity += quantity
			return true
		}

		c.lines = append(c.lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Discount:  decimal.Zero,
		})

		return true
	})
}

func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) bool {
	if quantity < 1 {
		return false
	}

	return c.mutate(func() bool {
		i := c.indexOf(productID)
		if i < 0 {
			return false
		}

		line := &c.lines[i]
		line.Quantity = quantity
		line.Discount = pricing.Clamp(line.Discount, decimal.Zero, line.pricingLine().Gross())

		return true
	})
}

// RemoveItem is idempotent.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	return c.mutate(func() bool {
		i := c.indexOf(productID)
		if i < 0 {
			return false
		}

		c.lines = slices.Delete(c.lines, i, i+1)

		return true
	})
}

// ApplyItemDiscount caps the discount at the line subtotal.
func (c *Cart) ApplyItemDiscount(productID uuid.UUID, amount decimal.Decimal) bool {
	if amount.IsNegative() {
		return false
	}

	return c.mutate(func() bool {
		i := c.indexOf(productID)
		if i < 0 {
			return false
		}

		line := &c.lines[i]
		line.Discount = decimal.Min(amount, line.pricingLine().Gross())

		return true
	})
}

func (c *Cart) ApplyCartDiscount(amount decimal.Decimal) bool {
	if amount.IsNegative() {
		return false
	}

	return c.mutate(func() bool {
		c.cartDiscount = amount
		return true
	})
}

func (c *Cart) Clear() bool {
	return c.mutate(func() bool {
		c.lines = nil
		c.cartDiscount = decimal.Zero
		return true
	})
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.lines)
}

func (c *Cart) Totals() pricing.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totals
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every applied mutation.
// The returned func removes the subscription.
func (c *Cart) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()

		delete(c.subscribers, id)
	}
}

// mutate runs fn under the lock, recomputes totals when fn reports a change
// and notifies subscribers once the lock is released.
func (c *Cart) mutate(fn func() bool) bool {
	c.mu.Lock()

	if !fn() {
		c.mu.Unlock()
		return false
	}

	c.recompute()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)

	return true
}

func (c *Cart) publish(snap Snapshot) {
	c.subMu.Lock()
	ids := make([]int, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	subs := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subscribers[id])
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Cart) recompute() {
	lines := make([]pricing.Line, len(c.lines))
	for i, l := range c.lines {
		lines[i] = l.pricingLine()
	}

	c.totals = pricing.Compute(lines, c.cartDiscount, c.taxRate)
}

func (c *Cart) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:        slices.Clone(c.lines),
		CartDiscount: c.cartDiscount,
		Totals:       c.totals,
	}
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	return slices.IndexFunc(c.lines, func(l Line) bool {
		return l.ProductID == productID
	})
}
