package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/aaravmahajanofficial/pos-admin-platform/pkg/sendGrid"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

type ReceiptService interface {
	SendReceipt(ctx context.Context, invoice *models.Invoice, to string) (*models.Notification, error)
}

type receiptService struct {
	repo  repository.NotificationRepository
	email sendGrid.EmailService
}

func NewReceiptService(repo repository.NotificationRepository, email sendGrid.EmailService) ReceiptService {
	return &receiptService{repo: repo, email: email}
}

var receiptPolicy = bluemonday.UGCPolicy()

var receiptTemplate = template.Must(template.New("receipt").Parse(`<h2>Receipt {{.ID}}</h2>
<table>
{{range .Lines}}<tr><td>{{.Quantity}} x {{.Name}}</td><td>{{.Total}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>Tax: {{.Tax}}<br>Discount: {{.Discount}}<br><strong>Total: {{.Total}}</strong></p>
<p>Paid by {{.Method}}{{if .Change}}, change {{.Change}}{{end}}</p>`))

type receiptLine struct {
	Quantity int
	Name     string
	Total    string
}

type receiptView struct {
	ID                             string
	Lines                          []receiptLine
	Subtotal, Tax, Discount, Total string
	Method                         string
	Change                         string
}

func newReceiptView(invoice *models.Invoice) receiptView {
	money := func(d decimal.Decimal) string {
		return invoice.Currency + " " + pricing.Format(d)
	}

	view := receiptView{
		ID:       invoice.ID.String(),
		Subtotal: money(invoice.Subtotal),
		Tax:      money(invoice.Tax),
		Discount: money(invoice.Discount),
		Total:    money(invoice.Total),
		Method:   invoice.PaymentMethod,
	}

	if invoice.Change.IsPositive() {
		view.Change = money(invoice.Change)
	}

	for _, line := range invoice.Lines {
		view.Lines = append(view.Lines, receiptLine{Quantity: line.Quantity, Name: line.Name, Total: money(line.LineTotal)})
	}

	return view
}

// RenderReceipt returns the plain text and sanitized HTML bodies of a receipt.
func RenderReceipt(invoice *models.Invoice) (string, string, error) {
	view := newReceiptView(invoice)

	var text strings.Builder
	fmt.Fprintf(&text, "Receipt %s\n", view.ID)
	for _, line := range view.Lines {
		fmt.Fprintf(&text, "%d x %s  %s\n", line.Quantity, line.Name, line.Total)
	}
	fmt.Fprintf(&text, "Subtotal: %s\nTax: %s\nDiscount: %s\nTotal: %s\nPaid by %s\n",
		view.Subtotal, view.Tax, view.Discount, view.Total, view.Method)
	if view.Change != "" {
		fmt.Fprintf(&text, "Change: %s\n", view.Change)
	}

	var html bytes.Buffer
	if err := receiptTemplate.Execute(&html, view); err != nil {
		return "", "", fmt.Errorf("rendering receipt: %w", err)
	}

	return text.String(), receiptPolicy.Sanitize(html.String()), nil
}

func (s *receiptService) SendReceipt(ctx context.Context, invoice *models.Invoice, to string) (*models.Notification, error) {
	text, html, err := RenderReceipt(invoice)
	if err != nil {
		return nil, errors.InternalError("Failed to render receipt").WithError(err)
	}

	subject := fmt.Sprintf("Your receipt: %s %s", invoice.Currency, pricing.Format(invoice.Total))

	notification := &models.Notification{
		ID:        uuid.New(),
		InvoiceID: invoice.ID,
		Type:      models.NotificationTypeEmail,
		Recipient: to,
		Subject:   subject,
		Content:   text,
		Status:    models.StatusPending,
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, errors.DatabaseError("Failed to record receipt notification").WithError(err)
	}

	err = s.email.Send(ctx, &models.EmailNotificationRequest{
		To:          to,
		Subject:     subject,
		Content:     text,
		HTMLContent: html,
	})
	if err != nil {
		notification.Status = models.StatusFailed
		notification.ErrorMessage = err.Error()
		_ = s.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusFailed, notification.ErrorMessage)

		return notification, errors.ThirdPartyError("Failed to send receipt").WithError(err)
	}

	notification.Status = models.StatusSent

	if err := s.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusSent, ""); err != nil {
		return notification, errors.DatabaseError("Receipt sent but status update failed").WithError(err)
	}

	return notification, nil
}
