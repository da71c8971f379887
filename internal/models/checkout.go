package models

import "github.com/google/uuid"

type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card other"`
}

// TenderRequest is the raw cash field. Malformed values are ignored by the
// register, not rejected, so only the length is checked here.
type TenderRequest struct {
	Amount string `json:"amount" validate:"max=16"`
}

type AttachCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
}

type CheckoutView struct {
	State         string     `json:"state"`
	Method        string     `json:"method,omitempty"`
	Tender        string     `json:"tender,omitempty"`
	Change        string     `json:"change,omitempty"`
	CanComplete   bool       `json:"can_complete"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	LastInvoiceID *uuid.UUID `json:"last_invoice_id,omitempty"`
}

type TenderResponse struct {
	Accepted bool          `json:"accepted"`
	Register *RegisterView `json:"register"`
}

type CompleteCheckoutResponse struct {
	Invoice  *Invoice      `json:"invoice"`
	Register *RegisterView `json:"register"`
}
