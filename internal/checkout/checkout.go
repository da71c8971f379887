// Package checkout drives the payment flow of a register: choosing a payment
// method, collecting cash, handing the sale to the invoice sink and resetting
// the cart once the sale is done.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cart"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCompletionDisplay is how long a completed sale stays on screen.
const DefaultCompletionDisplay = 2 * time.Second

var (
	ErrInvalidTransition = errors.New("checkout: invalid state transition")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
	ErrCompletionBlocked = errors.New("checkout: tendered amount is below total")
	ErrUnknownMethod     = errors.New("checkout: unknown payment method")
)

// optional digits, optional fraction of up to two digits
var tenderPattern = regexp.MustCompile(`^\d*(\.\d{0,2})?$`)

// ValidTender reports whether text is an acceptable cash entry.
func ValidTender(text string) bool {
	return tenderPattern.MatchString(text)
}

type Method string

const (
	MethodCash  Method = "cash"
	MethodCard  Method = "card"
	MethodOther Method = "other"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCash, MethodCard, MethodOther:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Sale is what the invoice sink receives on completion.
type Sale struct {
	Lines      []cart.Line
	Totals     pricing.Totals
	Method     Method
	Tendered   decimal.Decimal
	Change     decimal.Decimal
	CustomerID *uuid.UUID
}

type Receipt struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Total       decimal.Decimal `json:"total"`
	Change      decimal.Decimal `json:"change"`
	Method      Method          `json:"method"`
	CompletedAt time.Time       `json:"completed_at"`
}

type InvoiceSink interface {
	CreateInvoice(ctx context.Context, sale Sale) (Receipt, error)
}

// InvoiceSinkFunc adapts a function to InvoiceSink.
type InvoiceSinkFunc func(ctx context.Context, sale Sale) (Receipt, error)

func (f InvoiceSinkFunc) CreateInvoice(ctx context.Context, sale Sale) (Receipt, error) {
	return f(ctx, sale)
}

// Scheduler runs fn after d and returns a func that cancels it.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

func AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type Option func(*Machine)

func WithCompletionDisplay(d time.Duration) Option {
	return func(m *Machine) {
		m.display = d
	}
}

func WithScheduler(s Scheduler) Option {
	return func(m *Machine) {
		m.schedule = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

type session struct {
	method     Method
	tenderText string
	tendered   decimal.Decimal
	edited     bool
	customerID *uuid.UUID
}

func (s *session) prefill(total decimal.Decimal) {
	s.tenderText = pricing.Format(total)
	s.tendered = payable(total)
}

type Status struct {
	State         State
	Method        Method
	Tender        string
	Tendered      decimal.Decimal
	Change        decimal.Decimal
	DisplayChange string
	CanComplete   bool
	CustomerID    *uuid.UUID
	LastReceipt   *Receipt
}

type Machine struct {
	mu          sync.Mutex
	cart        *cart.Cart
	sink        InvoiceSink
	state       State
	session     *session
	lastReceipt *Receipt

	display     time.Duration
	schedule    Scheduler
	stopTimer   func() bool
	finishing   chan struct{} // closed once the in-flight reset has cleared the cart
	unsubscribe func()
	logger      *slog.Logger
}

func New(c *cart.Cart, sink InvoiceSink, opts ...Option) *Machine {
	m := &Machine{
		cart:     c,
		sink:     sink,
		state:    Idle,
		display:  DefaultCompletionDisplay,
		schedule: AfterFunc,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.unsubscribe = c.Subscribe(m.onCartChange)

	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Open shows the payment modal with cash selected and the total pre-filled.
func (m *Machine) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Idle {
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, m.state)
	}

	snap := m.cart.Snapshot()
	if len(snap.Lines) == 0 {
		return ErrEmptyCart
	}

	m.session = &session{method: MethodCash}
	m.session.prefill(snap.Totals.Total)
	m.lastReceipt = nil
	m.state = AwaitingPaymentMethod

	m.logger.Debug("Checkout opened", slog.String("total", pricing.Format(snap.Totals.Total)))

	return nil
}

func (m *Machine) SelectMethod(method Method) error {
	if _, err := ParseMethod(string(method)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.open() {
		return fmt.Errorf("%w: select method from %s", ErrInvalidTransition, m.state)
	}

	m.session.method = method
	if method != MethodCash {
		m.state = AwaitingPaymentMethod
	}

	return nil
}

// EnterTender replaces the cash amount. Text that does not match the tender
// pattern is ignored and false is returned; the previous value stays.
func (m *Machine) EnterTender(text string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.open() || m.session.method != MethodCash {
		return false, fmt.Errorf("%w: enter tender from %s", ErrInvalidTransition, m.state)
	}

	if !ValidTender(text) {
		return false, nil
	}

	m.session.tenderText = text
	m.session.tendered = parseTender(text)
	m.session.edited = true
	m.state = AwaitingAmount

	return true, nil
}

func (m *Machine) AttachCustomer(customerID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.open() {
		return fmt.Errorf("%w: attach customer from %s", ErrInvalidTransition, m.state)
	}

	m.session.customerID = customerID

	return nil
}

func (m *Machine) CanComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.canCompleteLocked(m.cart.Totals().Total)
}

// Change is never negative.
func (m *Machine) Change() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.changeLocked(m.cart.Totals().Total)
}

func (m *Machine) DisplayChange() string {
	return pricing.Format(m.Change())
}

// Complete hands the sale to the invoice sink. The cart is only cleared after
// the sink confirms the invoice; on failure the session is left as it was.
func (m *Machine) Complete(ctx context.Context) (Receipt, error) {
	m.mu.Lock()

	if !m.state.open() {
		state := m.state
		m.mu.Unlock()
		return Receipt{}, fmt.Errorf("%w: complete from %s", ErrInvalidTransition, state)
	}

	snap := m.cart.Snapshot()
	if !m.canCompleteLocked(snap.Totals.Total) {
		m.mu.Unlock()
		return Receipt{}, ErrCompletionBlocked
	}

	sale := Sale{
		Lines:      snap.Lines,
		Totals:     snap.Totals,
		Method:     m.session.method,
		Tendered:   m.session.tendered,
		Change:     m.changeLocked(snap.Totals.Total),
		CustomerID: m.session.customerID,
	}
	if sale.Method != MethodCash {
		sale.Tendered = payable(snap.Totals.Total)
	}

	previous := m.state
	m.state = Processing
	m.mu.Unlock()

	receipt, err := m.sink.CreateInvoice(ctx, sale)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = previous
		m.logger.Error("Invoice hand-off failed, cart kept", slog.String("method", string(sale.Method)), slog.Any("error", err))
		return Receipt{}, fmt.Errorf("creating invoice: %w", err)
	}

	m.state = Completed
	m.lastReceipt = &receipt
	m.stopTimer = m.schedule(m.display, m.finish)

	m.logger.Info("Checkout completed",
		slog.String("invoiceId", receipt.InvoiceID.String()),
		slog.String("total", pricing.Format(sale.Totals.Total)),
		slog.String("method", string(sale.Method)))

	return receipt, nil
}

// Cancel closes the modal without touching the cart. Cancelling a completed
// sale skips the remaining display time.
func (m *Machine) Cancel() error {
	m.mu.Lock()

	switch m.state {
	case Idle:
		m.mu.Unlock()
		return nil
	case AwaitingPaymentMethod, AwaitingAmount:
		m.state = Idle
		m.session = nil
		m.mu.Unlock()
		return nil
	case Completed:
		if m.stopTimer != nil {
			m.stopTimer()
			m.stopTimer = nil
		}
		m.mu.Unlock()
		m.finish()
		return nil
	default:
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, state)
	}
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.cart.Totals().Total
	st := Status{
		State:       m.state,
		CanComplete: m.canCompleteLocked(total),
		LastReceipt: m.lastReceipt,
	}

	if m.session != nil {
		st.Method = m.session.method
		st.Tender = m.session.tenderText
		st.Tendered = m.session.tendered
		st.CustomerID = m.session.customerID
	}

	st.Change = m.changeLocked(total)
	st.DisplayChange = pricing.Format(st.Change)

	return st
}

// Close detaches the machine from its cart and stops any pending reset.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// finish clears the cart while still Completed, so no edit can slip in
// between the clear and the return to Idle. Only one caller performs the
// reset; a concurrent caller waits for it before returning.
func (m *Machine) finish() {
	m.mu.Lock()
	if m.finishing != nil {
		done := m.finishing
		m.mu.Unlock()
		<-done
		return
	}

	if m.state != Completed {
		m.mu.Unlock()
		return
	}

	done := make(chan struct{})
	m.finishing = done
	m.mu.Unlock()

	m.cart.Clear()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = Idle
	m.session = nil
	m.stopTimer = nil
	m.finishing = nil
	close(done)
}

func (m *Machine) onCartChange(snap cart.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.open() || m.session.edited {
		return
	}

	m.session.prefill(snap.Totals.Total)
}

func (m *Machine) canCompleteLocked(total decimal.Decimal) bool {
	if !m.state.open() {
		return false
	}

	if m.session.method != MethodCash {
		return true
	}

	return m.session.tendered.GreaterThanOrEqual(payable(total))
}

func (m *Machine) changeLocked(total decimal.Decimal) decimal.Decimal {
	if m.session == nil || m.session.method != MethodCash {
		return decimal.Zero
	}

	change := m.session.tendered.Sub(payable(total))
	if change.IsNegative() {
		return decimal.Zero
	}

	return change
}

// payable is the total a customer can actually hand over in cash.
func payable(total decimal.Decimal) decimal.Decimal {
	return total.Round(2)
}

func parseTender(text string) decimal.Decimal {
	t := strings.TrimSuffix(text, ".")
	if t == "" {
		return decimal.Zero
	}

	if strings.HasPrefix(t, ".") {
		t = "0" + t
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero
	}

	return d
}
