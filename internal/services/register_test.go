package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/checkout"
	appErrors "github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	serviceMocks "github.com/aaravmahajanofficial/pos-admin-platform/internal/services/mocks"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pendingReset captures the completion display callback instead of arming a timer.
type pendingReset struct {
	mu sync.Mutex
	fn func()
}

func (p *pendingReset) schedule(_ time.Duration, fn func()) func() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fn = fn
	return func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.fn = nil
		return true
	}
}

func (p *pendingReset) fire() {
	p.mu.Lock()
	fn := p.fn
	p.fn = nil
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

type registerFixture struct {
	shopID    uuid.UUID
	claims    *models.Claims
	widget    models.Product
	catalog   *serviceMocks.CatalogService
	customers *serviceMocks.CustomerService
	invoices  *serviceMocks.InvoiceService
	reset     *pendingReset
	svc       service.RegisterService
}

func newRegisterFixture(t *testing.T) *registerFixture {
	t.Helper()

	shopID := uuid.New()
	f := &registerFixture{
		shopID:    shopID,
		claims:    testutils.CashierClaims(shopID),
		widget:    models.Product{ID: uuid.New(), ShopID: shopID, Name: "Widget", SKU: "W-1", Price: d("10.00")},
		catalog:   new(serviceMocks.CatalogService),
		customers: new(serviceMocks.CustomerService),
		invoices:  new(serviceMocks.InvoiceService),
		reset:     &pendingReset{},
	}

	f.svc = service.NewRegisterService(f.catalog, f.customers, f.invoices, service.RegisterConfig{
		TaxRate:   d("0.10"),
		Scheduler: f.reset.schedule,
	})
	t.Cleanup(f.svc.Shutdown)

	f.catalog.On("Product", mock.Anything, shopID, f.widget.ID).Return(f.widget, nil).Maybe()

	return f
}

func (f *registerFixture) open(t *testing.T) uuid.UUID {
	t.Helper()

	view, err := f.svc.OpenRegister(context.Background(), f.claims, &models.OpenRegisterRequest{})
	require.NoError(t, err)

	return view.ID
}

// seventeen rings up 2 x 10.00 with a 5.00 cart discount: 20.00 + 2.00 tax - 5.00.
func (f *registerFixture) seventeen(t *testing.T, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 2})
	require.NoError(t, err)

	view, err := f.svc.ApplyCartDiscount(ctx, f.claims, id, d("5"))
	require.NoError(t, err)
	require.Equal(t, "17.00", view.Totals.Total)
}

func TestRegisterService_OpenRegister(t *testing.T) {
	shopID := uuid.New()
	otherShop := uuid.New()

	tests := []struct {
		name     string
		claims   *models.Claims
		req      *models.OpenRegisterRequest
		wantShop uuid.UUID
		wantCode string
	}{
		{name: "Cashier Own Shop", claims: testutils.CashierClaims(shopID), req: &models.OpenRegisterRequest{}, wantShop: shopID},
		{name: "Cashier Names Own Shop", claims: testutils.CashierClaims(shopID), req: &models.OpenRegisterRequest{ShopID: &shopID}, wantShop: shopID},
		{name: "Cashier Other Shop", claims: testutils.CashierClaims(shopID), req: &models.OpenRegisterRequest{ShopID: &otherShop}, wantCode: appErrors.ErrCodeForbidden},
		{name: "Super Admin With Shop", claims: testutils.SuperAdminClaims(), req: &models.OpenRegisterRequest{ShopID: &otherShop}, wantShop: otherShop},
		{name: "Super Admin Without Shop", claims: testutils.SuperAdminClaims(), req: &models.OpenRegisterRequest{}, wantCode: appErrors.ErrCodeValidation},
		{name: "Staff Without Shop", claims: &models.Claims{UserID: uuid.New(), Role: models.RoleCashier}, req: &models.OpenRegisterRequest{}, wantCode: appErrors.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewRegisterService(new(serviceMocks.CatalogService), new(serviceMocks.CustomerService), new(serviceMocks.InvoiceService), service.RegisterConfig{TaxRate: d("0.10")})
			t.Cleanup(svc.Shutdown)

			view, err := svc.OpenRegister(context.Background(), tt.claims, tt.req)

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantShop, view.ShopID)
			assert.Equal(t, tt.claims.UserID, view.CashierID)
			assert.Equal(t, "idle", view.Checkout.State)
			assert.Empty(t, view.Lines)
			assert.NotNil(t, view.Lines)
			assert.Equal(t, "0.00", view.Totals.Total)
		})
	}
}

func TestRegisterService_Cart(t *testing.T) {
	t.Run("Totals Follow Edits", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)

		f.seventeen(t, id)

		view, err := f.svc.GetRegister(ctx, f.claims, id)
		require.NoError(t, err)
		require.Len(t, view.Lines, 1)
		assert.Equal(t, 2, view.Lines[0].Quantity)
		assert.Equal(t, "20.00", view.Totals.Subtotal)
		assert.Equal(t, "2.00", view.Totals.Tax)
		assert.Equal(t, "5.00", view.Totals.Discount)

		view, err = f.svc.UpdateQuantity(ctx, f.claims, id, f.widget.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, "28.00", view.Totals.Total)

		view, err = f.svc.ApplyItemDiscount(ctx, f.claims, id, f.widget.ID, d("50"))
		require.NoError(t, err)
		assert.Equal(t, "30.00", view.Lines[0].Discount)
		assert.Equal(t, "0.00", view.Totals.Total)

		view, err = f.svc.RemoveItem(ctx, f.claims, id, f.widget.ID)
		require.NoError(t, err)
		assert.Empty(t, view.Lines)

		view, err = f.svc.ClearCart(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, "0.00", view.Totals.Discount)
	})

	t.Run("Rejected Edits", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		missing := uuid.New()

		_, err := f.svc.UpdateQuantity(ctx, f.claims, id, f.widget.ID, 0)
		assertAppError(t, err, appErrors.ErrCodeValidation)

		_, err = f.svc.UpdateQuantity(ctx, f.claims, id, missing, 2)
		assertAppError(t, err, appErrors.ErrCodeNotFound)

		_, err = f.svc.ApplyItemDiscount(ctx, f.claims, id, missing, d("1"))
		assertAppError(t, err, appErrors.ErrCodeNotFound)

		_, err = f.svc.ApplyCartDiscount(ctx, f.claims, id, d("-1"))
		assertAppError(t, err, appErrors.ErrCodeValidation)

		view, err := f.svc.RemoveItem(ctx, f.claims, id, missing)
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
	})

	t.Run("Unknown Product", func(t *testing.T) {
		f := newRegisterFixture(t)
		id := f.open(t)
		unknown := uuid.New()

		f.catalog.On("Product", mock.Anything, f.shopID, unknown).Return(models.Product{}, appErrors.NotFoundError("Product not found")).Once()

		_, err := f.svc.AddItem(context.Background(), f.claims, id, &models.AddItemRequest{ProductID: unknown, Quantity: 1})

		assertAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Negative Price", func(t *testing.T) {
		f := newRegisterFixture(t)
		id := f.open(t)
		broken := models.Product{ID: uuid.New(), Name: "Refund", Price: d("-1")}

		f.catalog.On("Product", mock.Anything, f.shopID, broken.ID).Return(broken, nil).Once()

		_, err := f.svc.AddItem(context.Background(), f.claims, id, &models.AddItemRequest{ProductID: broken.ID, Quantity: 1})

		assertAppError(t, err, appErrors.ErrCodeBadRequest)
	})

	t.Run("Locked During Checkout", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		_, err = f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 1})
		assertAppError(t, err, appErrors.ErrCodeConflict)

		_, err = f.svc.ClearCart(ctx, f.claims, id)
		assertAppError(t, err, appErrors.ErrCodeConflict)

		_, err = f.svc.CancelCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		view, err := f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, view.Lines[0].Quantity)
	})
}

func TestRegisterService_Checkout(t *testing.T) {
	t.Run("Cash Sale", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		view, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, "awaiting_payment_method", view.Checkout.State)
		assert.Equal(t, "cash", view.Checkout.Method)
		assert.Equal(t, "17.00", view.Checkout.Tender)
		assert.True(t, view.Checkout.CanComplete)

		resp, err := f.svc.EnterTender(ctx, f.claims, id, "20.00")
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.Equal(t, "awaiting_amount", resp.Register.Checkout.State)
		assert.Equal(t, "3.00", resp.Register.Checkout.Change)

		resp, err = f.svc.EnterTender(ctx, f.claims, id, "20.5.0")
		require.NoError(t, err)
		assert.False(t, resp.Accepted)
		assert.Equal(t, "20.00", resp.Register.Checkout.Tender)

		invoice := &models.Invoice{ID: uuid.New(), ShopID: f.shopID, Total: d("17"), Change: d("3"), PaymentMethod: "cash"}
		f.invoices.On("CreateInvoice", ctx, service.SaleContext{ShopID: f.shopID, RegisterID: id, CashierID: f.claims.UserID},
			mock.MatchedBy(func(s checkout.Sale) bool {
				return s.Totals.Total.Equal(d("17")) && s.Tendered.Equal(d("20")) && s.Change.Equal(d("3")) && len(s.Lines) == 1
			})).Return(invoice, nil).Once()

		done, err := f.svc.CompleteCheckout(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, done.Invoice.ID)
		assert.Equal(t, "completed", done.Register.Checkout.State)
		require.NotNil(t, done.Register.Checkout.LastInvoiceID)
		assert.Equal(t, invoice.ID, *done.Register.Checkout.LastInvoiceID)
		assert.Len(t, done.Register.Lines, 1)

		f.reset.fire()

		view, err = f.svc.GetRegister(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, "idle", view.Checkout.State)
		assert.Empty(t, view.Lines)
		assert.Equal(t, "0.00", view.Totals.Total)
		f.invoices.AssertExpectations(t)
	})

	t.Run("Short Tender Blocks Completion", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		resp, err := f.svc.EnterTender(ctx, f.claims, id, "10.00")
		require.NoError(t, err)
		assert.False(t, resp.Register.Checkout.CanComplete)
		assert.Equal(t, "0.00", resp.Register.Checkout.Change)

		_, err = f.svc.CompleteCheckout(ctx, f.claims, id)
		assertAppError(t, err, appErrors.ErrCodeCheckoutBlocked)
		f.invoices.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Card Sale", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		view, err := f.svc.SelectMethod(ctx, f.claims, id, "card")
		require.NoError(t, err)
		assert.Equal(t, "card", view.Checkout.Method)
		assert.True(t, view.Checkout.CanComplete)

		_, err = f.svc.EnterTender(ctx, f.claims, id, "5")
		assertAppError(t, err, appErrors.ErrCodeConflict)

		_, err = f.svc.SelectMethod(ctx, f.claims, id, "cheque")
		assertAppError(t, err, appErrors.ErrCodeValidation)

		f.invoices.On("CreateInvoice", ctx, mock.Anything, mock.MatchedBy(func(s checkout.Sale) bool {
			return s.Method == checkout.MethodCard && s.Change.IsZero()
		})).Return(&models.Invoice{ID: uuid.New()}, nil).Once()

		_, err = f.svc.CompleteCheckout(ctx, f.claims, id)
		require.NoError(t, err)
	})

	t.Run("Empty Cart", func(t *testing.T) {
		f := newRegisterFixture(t)
		id := f.open(t)

		_, err := f.svc.OpenCheckout(context.Background(), f.claims, id)

		assertAppError(t, err, appErrors.ErrCodeBadRequest)
	})

	t.Run("Open Twice", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		_, err = f.svc.OpenCheckout(ctx, f.claims, id)
		assertAppError(t, err, appErrors.ErrCodeConflict)
	})

	t.Run("Invoice Failure Keeps Sale", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)
		_, err = f.svc.EnterTender(ctx, f.claims, id, "20")
		require.NoError(t, err)

		f.invoices.On("CreateInvoice", ctx, mock.Anything, mock.Anything).
			Return(nil, appErrors.DatabaseError("Failed to create invoice")).Once()

		_, err = f.svc.CompleteCheckout(ctx, f.claims, id)
		assertAppError(t, err, appErrors.ErrCodeDatabaseError)

		view, err := f.svc.GetRegister(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, "awaiting_amount", view.Checkout.State)
		assert.Equal(t, "20", view.Checkout.Tender)
		assert.Len(t, view.Lines, 1)
		assert.Nil(t, view.Checkout.LastInvoiceID)
	})

	t.Run("Edit After Completion Starts New Sale", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)

		_, err := f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		f.invoices.On("CreateInvoice", ctx, mock.Anything, mock.Anything).Return(&models.Invoice{ID: uuid.New()}, nil).Once()

		_, err = f.svc.CompleteCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		view, err := f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, "idle", view.Checkout.State)
		require.Len(t, view.Lines, 1)
		assert.Equal(t, 1, view.Lines[0].Quantity)
		assert.Equal(t, "11.00", view.Totals.Total)
	})

	t.Run("Attach Customer", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)
		f.seventeen(t, id)
		customerID := uuid.New()

		f.customers.On("GetCustomer", ctx, f.shopID, customerID).Return(&models.Customer{ID: customerID, ShopID: f.shopID}, nil)

		_, err := f.svc.AttachCustomer(ctx, f.claims, id, customerID)
		assertAppError(t, err, appErrors.ErrCodeConflict)

		_, err = f.svc.OpenCheckout(ctx, f.claims, id)
		require.NoError(t, err)

		view, err := f.svc.AttachCustomer(ctx, f.claims, id, customerID)
		require.NoError(t, err)
		require.NotNil(t, view.Checkout.CustomerID)
		assert.Equal(t, customerID, *view.Checkout.CustomerID)

		unknown := uuid.New()
		f.customers.On("GetCustomer", ctx, f.shopID, unknown).Return(nil, appErrors.NotFoundError("Customer not found")).Once()

		_, err = f.svc.AttachCustomer(ctx, f.claims, id, unknown)
		assertAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Cancel Is Idempotent", func(t *testing.T) {
		f := newRegisterFixture(t)
		ctx := context.Background()
		id := f.open(t)

		view, err := f.svc.CancelCheckout(ctx, f.claims, id)
		require.NoError(t, err)
		assert.Equal(t, "idle", view.Checkout.State)
	})
}

func TestRegisterService_Access(t *testing.T) {
	f := newRegisterFixture(t)
	ctx := context.Background()
	id := f.open(t)

	_, err := f.svc.GetRegister(ctx, testutils.CashierClaims(uuid.New()), id)
	assertAppError(t, err, appErrors.ErrCodeNotFound)

	_, err = f.svc.GetRegister(ctx, testutils.SuperAdminClaims(), id)
	require.NoError(t, err)

	_, err = f.svc.GetRegister(ctx, f.claims, uuid.New())
	assertAppError(t, err, appErrors.ErrCodeNotFound)

	require.NoError(t, f.svc.CloseRegister(ctx, f.claims, id))

	_, err = f.svc.GetRegister(ctx, f.claims, id)
	assertAppError(t, err, appErrors.ErrCodeNotFound)

	assertAppError(t, f.svc.CloseRegister(ctx, f.claims, id), appErrors.ErrCodeNotFound)
}

func TestRegisterService_RegistersAreIndependent(t *testing.T) {
	f := newRegisterFixture(t)
	ctx := context.Background()
	first := f.open(t)
	second := f.open(t)

	f.seventeen(t, first)

	view, err := f.svc.GetRegister(ctx, f.claims, second)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, decimal.RequireFromString(view.Totals.Total).IsZero())
}

func TestRegisterService_CloseWhileRequestWaits(t *testing.T) {
	f := newRegisterFixture(t)
	ctx := context.Background()
	id := f.open(t)

	slow := models.Product{ID: uuid.New(), ShopID: f.shopID, Name: "Slow", SKU: "S-1", Price: d("1.00")}
	entered := make(chan struct{})
	release := make(chan struct{})
	f.catalog.On("Product", mock.Anything, f.shopID, slow.ID).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(slow, nil).Once()

	var (
		wg                         sync.WaitGroup
		holdErr, closeErr, editErr error
	)

	// the first edit holds the register while close and a second edit queue behind it
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, holdErr = f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: slow.ID, Quantity: 1})
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		closeErr = f.svc.CloseRegister(ctx, f.claims, id)
	}()
	time.Sleep(20 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, editErr = f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 1})
	}()
	time.Sleep(20 * time.Millisecond)

	close(release)
	wg.Wait()

	require.NoError(t, holdErr)
	require.NoError(t, closeErr)
	assertAppError(t, editErr, appErrors.ErrCodeNotFound)
}

func TestRegisterService_Shutdown(t *testing.T) {
	f := newRegisterFixture(t)
	ctx := context.Background()
	id := f.open(t)
	f.seventeen(t, id)

	f.svc.Shutdown()

	_, err := f.svc.GetRegister(ctx, f.claims, id)
	assertAppError(t, err, appErrors.ErrCodeNotFound)

	_, err = f.svc.AddItem(ctx, f.claims, id, &models.AddItemRequest{ProductID: f.widget.ID, Quantity: 1})
	assertAppError(t, err, appErrors.ErrCodeNotFound)
}
