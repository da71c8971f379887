package features

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cart"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/checkout"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("invoice store unavailable")

type checkoutTestContext struct {
	cart     *cart.Cart
	machine  *checkout.Machine
	pending  func()
	failSink bool
	invoices []checkout.Sale
	err      error
}

func (c *checkoutTestContext) reset() {
	if c.machine != nil {
		c.machine.Close()
	}

	c.cart = cart.New()
	c.pending = nil
	c.failSink = false
	c.invoices = nil
	c.err = nil

	scheduler := func(d time.Duration, fn func()) func() bool {
		c.pending = fn
		return func() bool {
			c.pending = nil
			return true
		}
	}

	c.machine = checkout.New(c.cart, checkout.InvoiceSinkFunc(c.createInvoice), checkout.WithScheduler(scheduler))
}

func (c *checkoutTestContext) createInvoice(ctx context.Context, sale checkout.Sale) (checkout.Receipt, error) {
	if c.failSink {
		return checkout.Receipt{}, errStoreDown
	}

	c.invoices = append(c.invoices, sale)

	return checkout.Receipt{InvoiceID: uuid.New(), Total: sale.Totals.Total, Method: sale.Method}, nil
}

func (c *checkoutTestContext) aCartWithOfAProductPriced(qty int, price string) error {
	p := models.Product{ID: uuid.New(), Name: "Widget", SKU: "W-1", Price: decimal.RequireFromString(price)}
	if !c.cart.AddItem(p, qty) {
		return fmt.Errorf("could not add %d x %s", qty, price)
	}
	return nil
}

func (c *checkoutTestContext) aCartDiscountOf(amount string) error {
	c.cart.ApplyCartDiscount(decimal.RequireFromString(amount))
	return nil
}

func (c *checkoutTestContext) theCartIsCleared() error {
	c.cart.Clear()
	return nil
}

func (c *checkoutTestContext) theInvoiceStoreIsUnavailable() error {
	c.failSink = true
	return nil
}

func (c *checkoutTestContext) theCashierOpensCheckout() error {
	c.err = c.machine.Open()
	return nil
}

func (c *checkoutTestContext) theCashierTenders(text string) error {
	_, err := c.machine.EnterTender(text)
	return err
}

func (c *checkoutTestContext) theCashierSelects(method string) error {
	return c.machine.SelectMethod(checkout.Method(method))
}

func (c *checkoutTestContext) theCashierCompletesTheSale() error {
	_, c.err = c.machine.Complete(context.Background())
	return nil
}

func (c *checkoutTestContext) theCashierCancelsCheckout() error {
	return c.machine.Cancel()
}

func (c *checkoutTestContext) theCompletionDisplayElapses() error {
	if c.pending == nil {
		return errors.New("no completion reset scheduled")
	}

	fn := c.pending
	c.pending = nil
	fn()

	return nil
}

func expectMoney(label string, got decimal.Decimal, want string) error {
	if pricing.Format(got) != want {
		return fmt.Errorf("expected %s %s, got %s", label, want, pricing.Format(got))
	}
	return nil
}

func (c *checkoutTestContext) theCartSubtotalIs(want string) error {
	return expectMoney("subtotal", c.cart.Totals().Subtotal, want)
}

func (c *checkoutTestContext) theCartTaxIs(want string) error {
	return expectMoney("tax", c.cart.Totals().Tax, want)
}

func (c *checkoutTestContext) theCartTotalIs(want string) error {
	return expectMoney("total", c.cart.Totals().Total, want)
}

func (c *checkoutTestContext) theChangeShownIs(want string) error {
	if got := c.machine.DisplayChange(); got != want {
		return fmt.Errorf("expected change %s, got %s", want, got)
	}
	return nil
}

func (c *checkoutTestContext) completionIsAllowed() error {
	if !c.machine.CanComplete() {
		return errors.New("expected completion to be allowed")
	}
	return nil
}

func (c *checkoutTestContext) completionIsBlocked() error {
	if c.machine.CanComplete() {
		return errors.New("expected completion to be blocked")
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsWith(reason string) error {
	var want error
	switch reason {
	case "completion blocked":
		want = checkout.ErrCompletionBlocked
	case "cart is empty":
		want = checkout.ErrEmptyCart
	case "invoice store unavailable":
		want = errStoreDown
	default:
		return fmt.Errorf("unknown failure %q", reason)
	}

	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected error %v, got %v", want, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutStateIs(want string) error {
	if got := c.machine.State().String(); got != want {
		return fmt.Errorf("expected state %s, got %s", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theTenderReads(want string) error {
	if got := c.machine.Status().Tender; got != want {
		return fmt.Errorf("expected tender %q, got %q", want, got)
	}
	return nil
}

func (c *checkoutTestContext) anInvoiceForPaidByIsCreated(total, method string) error {
	if len(c.invoices) != 1 {
		return fmt.Errorf("expected 1 invoice, got %d", len(c.invoices))
	}

	sale := c.invoices[0]
	if string(sale.Method) != method {
		return fmt.Errorf("expected method %s, got %s", method, sale.Method)
	}

	return expectMoney("invoice total", sale.Totals.Total, total)
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if n := c.cart.Len(); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a cart with (\d+) of a product priced "([^"]*)"$`, tc.aCartWithOfAProductPriced)
	ctx.Step(`^a cart discount of "([^"]*)"$`, tc.aCartDiscountOf)
	ctx.Step(`^the cart is cleared$`, tc.theCartIsCleared)
	ctx.Step(`^the invoice store is unavailable$`, tc.theInvoiceStoreIsUnavailable)

	// When steps
	ctx.Step(`^the cashier opens checkout$`, tc.theCashierOpensCheckout)
	ctx.Step(`^the cashier tenders "([^"]*)"$`, tc.theCashierTenders)
	ctx.Step(`^the cashier selects "([^"]*)"$`, tc.theCashierSelects)
	ctx.Step(`^the cashier completes the sale$`, tc.theCashierCompletesTheSale)
	ctx.Step(`^the cashier cancels checkout$`, tc.theCashierCancelsCheckout)
	ctx.Step(`^the completion display elapses$`, tc.theCompletionDisplayElapses)

	// Then steps
	ctx.Step(`^the cart subtotal is "([^"]*)"$`, tc.theCartSubtotalIs)
	ctx.Step(`^the cart tax is "([^"]*)"$`, tc.theCartTaxIs)
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the change shown is "([^"]*)"$`, tc.theChangeShownIs)
	ctx.Step(`^completion is allowed$`, tc.completionIsAllowed)
	ctx.Step(`^completion is blocked$`, tc.completionIsBlocked)
	ctx.Step(`^the checkout fails with "([^"]*)"$`, tc.theCheckoutFailsWith)
	ctx.Step(`^the checkout state is "([^"]*)"$`, tc.theCheckoutStateIs)
	ctx.Step(`^the tender reads "([^"]*)"$`, tc.theTenderReads)
	ctx.Step(`^an invoice for "([^"]*)" paid by "([^"]*)" is created$`, tc.anInvoiceForPaidByIsCreated)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
