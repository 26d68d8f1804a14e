package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/pkg/apperror"
	"github.com/clinicasantafe/clinica-api/pkg/billing"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// GenericItemDescription replaces every line description on invoices
// requested with a generic concept. The underlying line items keep
// their real names.
const GenericItemDescription = "Servicios Médicos"

// fallbackClientName is printed on simple receipts when the payment has
// no registered patient.
const fallbackClientName = "Consumidor Final"

// PaymentService handles the payment lifecycle: cart editing while
// pending, checkout into a paid payment with its invoice snapshot, and
// append-only refunds afterwards.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	lineItemRepo repository.LineItemRepository
	catalogRepo  repository.CatalogRepository
	patientRepo  repository.PatientRepository
	invoiceRepo  repository.InvoiceRepository
	logger       *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	lineItemRepo repository.LineItemRepository,
	catalogRepo repository.CatalogRepository,
	patientRepo repository.PatientRepository,
	invoiceRepo repository.InvoiceRepository,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		lineItemRepo: lineItemRepo,
		catalogRepo:  catalogRepo,
		patientRepo:  patientRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// CreatePaymentInput represents the create payment input
type CreatePaymentInput struct {
	PatientID *uuid.UUID
	UserID    uuid.UUID
}

// CreatePayment opens a new pending payment, optionally linked to a
// registered patient.
func (s *PaymentService) CreatePayment(ctx context.Context, input *CreatePaymentInput) (*entity.Payment, error) {
	if input.PatientID != nil {
		patient, err := s.patientRepo.GetByID(ctx, *input.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			return nil, apperror.NewNotFoundError("Patient")
		}
	}

	payment := &entity.Payment{
		PatientID: input.PatientID,
		UserID:    input.UserID,
		Status:    enum.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment retrieves a payment with its items, allocations, refunds
// and invoice.
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

// ListPayments lists payments with offset pagination
func (s *PaymentService) ListPayments(ctx context.Context, params *repository.PaymentFilterParams) (*pagination.PaginatedResult[entity.Payment], error) {
	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(payments, p), nil
}

// ListPaymentsCursor lists payments with cursor pagination, for the
// infinite-scroll history view.
func (s *PaymentService) ListPaymentsCursor(ctx context.Context, params *repository.PaymentCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Payment], error) {
	payments, err := s.paymentRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}
	cp, items := pagination.NewCursorPagination(payments, params.Cursor.Limit,
		func(p entity.Payment) string { return p.ID.String() },
		func(p entity.Payment) time.Time { return p.CreatedAt },
	)
	return pagination.NewCursorPaginatedResult(items, cp), nil
}

// ItemSource identifies where a new line item's name and price come from.
type ItemSource string

const (
	ItemSourceCatalog ItemSource = "catalog"
	ItemSourceVariant ItemSource = "variant"
	ItemSourceCustom  ItemSource = "custom"
)

// AddItemInput represents the add line item input. Exactly one source
// shape is valid: catalog needs CatalogItemID, variant additionally
// needs VariantID, custom needs Name and UnitPrice.
type AddItemInput struct {
	Source        ItemSource
	CatalogItemID *uuid.UUID
	VariantID     *uuid.UUID
	Name          string
	UnitPrice     decimal.Decimal
	Quantity      int
}

// AddItem appends a line item to a pending payment. Name and unit
// price are snapshotted at this moment; later catalog edits do not
// reach existing payments.
func (s *PaymentService) AddItem(ctx context.Context, paymentID uuid.UUID, input *AddItemInput) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperror.NewValidationError("Quantity must be at least 1")
	}

	item := &entity.LineItem{
		PaymentID: payment.ID,
		Quantity:  quantity,
	}

	switch input.Source {
	case ItemSourceCatalog:
		if input.CatalogItemID == nil {
			return nil, apperror.NewValidationError("Catalog item id is required")
		}
		catalogItem, err := s.activeCatalogItem(ctx, *input.CatalogItemID)
		if err != nil {
			return nil, err
		}
		item.CatalogItemID = &catalogItem.ID
		item.Name = catalogItem.Name
		item.UnitPrice = catalogItem.Price

	case ItemSourceVariant:
		if input.CatalogItemID == nil || input.VariantID == nil {
			return nil, apperror.NewValidationError("Catalog item id and variant id are required")
		}
		catalogItem, err := s.activeCatalogItem(ctx, *input.CatalogItemID)
		if err != nil {
			return nil, err
		}
		variant := catalogItem.Variant(*input.VariantID)
		if variant == nil {
			return nil, apperror.NewNotFoundError("Item variant")
		}
		item.CatalogItemID = &catalogItem.ID
		item.VariantID = &variant.ID
		item.Name = catalogItem.Name + " - " + variant.Name
		item.UnitPrice = variant.Price

	case ItemSourceCustom:
		if input.Name == "" {
			return nil, apperror.NewValidationError("Custom item name is required")
		}
		if !input.UnitPrice.IsPositive() {
			return nil, apperror.NewValidationError("Custom item price must be greater than zero")
		}
		item.Name = input.Name
		item.UnitPrice = input.UnitPrice
		item.IsCustom = true

	default:
		return nil, apperror.NewValidationError(fmt.Sprintf("Unknown item source %q", input.Source))
	}

	if err := s.lineItemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetWithDetails(ctx, payment.ID)
}

// RemoveItem deletes a line item from a pending payment
func (s *PaymentService) RemoveItem(ctx context.Context, paymentID, itemID uuid.UUID) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	item, err := s.lineItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.PaymentID != payment.ID {
		return nil, apperror.NewNotFoundError("Line item")
	}
	if err := s.lineItemRepo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetWithDetails(ctx, payment.ID)
}

// SetQuantity updates a line item's quantity on a pending payment
func (s *PaymentService) SetQuantity(ctx context.Context, paymentID, itemID uuid.UUID, quantity int) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperror.NewValidationError("Quantity must be at least 1")
	}

	item, err := s.lineItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.PaymentID != payment.ID {
		return nil, apperror.NewNotFoundError("Line item")
	}
	item.Quantity = quantity
	if err := s.lineItemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetWithDetails(ctx, payment.ID)
}

// DiscountInput represents a discount to apply to a payment
type DiscountInput struct {
	Type   enum.DiscountType
	Value  decimal.Decimal
	Reason *string
}

func (in *DiscountInput) toBilling() *billing.Discount {
	d := &billing.Discount{Value: in.Value}
	if in.Type == enum.DiscountTypeAbsolute {
		d.Type = billing.DiscountAbsolute
	} else {
		d.Type = billing.DiscountPercentage
	}
	if in.Reason != nil {
		d.Reason = *in.Reason
	}
	return d
}

// SetDiscount stores a discount on a pending payment. The value is
// validated against the current tax-exclusive subtotal; an absolute
// discount larger than the subtotal is rejected, not clamped.
func (s *PaymentService) SetDiscount(ctx context.Context, paymentID uuid.UUID, input *DiscountInput) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetWithDetails(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	if payment.Status != enum.PaymentStatusPending {
		return nil, apperror.NewStateError(fmt.Sprintf("Cannot modify a %s payment", payment.Status))
	}

	subtotal, _ := billing.Decompose(payment.SubtotalInclusive())
	if err := input.toBilling().Validate(subtotal); err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	discountType := input.Type
	payment.DiscountType = &discountType
	payment.DiscountValue = input.Value
	payment.DiscountReason = input.Reason
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ClearDiscount removes the discount from a pending payment
func (s *PaymentService) ClearDiscount(ctx context.Context, paymentID uuid.UUID) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	payment.DiscountType = nil
	payment.DiscountValue = decimal.Zero
	payment.DiscountReason = nil
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// TotalsPreview is the live monetary breakdown of a pending payment.
// EffectiveDiscount carries the capped display value for an absolute
// discount that currently exceeds the subtotal; checkout will still
// reject it.
type TotalsPreview struct {
	Totals            *billing.Totals `json:"totals"`
	EffectiveDiscount decimal.Decimal `json:"effective_discount"`
	NetTotal          decimal.Decimal `json:"net_total"`
}

// Totals computes the current breakdown for display. Unlike checkout,
// an invalid discount does not fail the preview: the discount amount is
// capped so the screen always has something coherent to show.
func (s *PaymentService) Totals(ctx context.Context, paymentID uuid.UUID) (*TotalsPreview, error) {
	payment, err := s.paymentRepo.GetWithDetails(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}

	subtotalInclusive := payment.SubtotalInclusive()
	subtotal, _ := billing.Decompose(subtotalInclusive)
	discount := payment.Discount()

	effective := decimal.Zero
	if discount != nil {
		effective = discount.CappedAmount(subtotal)
	}
	totals, err := billing.Compute(subtotalInclusive, discount)
	if err != nil {
		// Fall back to the capped amount for display.
		totals, _ = billing.Compute(subtotalInclusive, &billing.Discount{
			Type:  billing.DiscountAbsolute,
			Value: effective,
		})
	}

	net := totals.Total
	if payment.Invoice != nil {
		net = billing.NetTotal(payment.Invoice.Total, payment.RefundedAmounts(), decimal.Zero)
	}
	return &TotalsPreview{Totals: totals, EffectiveDiscount: effective, NetTotal: net}, nil
}

// Cancel abandons a pending payment. Terminal payments reject the call.
func (s *PaymentService) Cancel(ctx context.Context, paymentID uuid.UUID) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, enum.PaymentStatusCancelled); err != nil {
		return nil, err
	}
	payment.Status = enum.PaymentStatusCancelled

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
	}).Info("payment cancelled")
	return payment, nil
}

// AllocationInput is one method/amount pair of a split checkout
type AllocationInput struct {
	Method string
	Amount decimal.Decimal
}

// CheckoutInput represents the checkout input. Either Method (single
// payment method) or Allocations (split payment) must be set, never
// both. Discount, when present, replaces whatever discount the payment
// carried before totals are computed.
type CheckoutInput struct {
	UserID      uuid.UUID
	Method      *string
	Allocations []AllocationInput
	Discount    *DiscountInput

	// AllowEmpty permits checking out a payment with no line items,
	// used for legacy transactions recorded after the fact.
	AllowEmpty bool

	// UseGenericDescription prints every invoice line under a generic
	// concept instead of the item names.
	UseGenericDescription bool

	// RTN fields switch the invoice from a simple receipt to a legal
	// invoice addressed to a company.
	UseRTN      bool
	CompanyName string
	CompanyRTN  string
}

// Checkout finalizes a pending payment: validates the discount,
// reconciles the proposed allocations against the computed total, and
// atomically marks the payment paid while emitting its invoice
// snapshot. Nothing is persisted unless every check passes.
func (s *PaymentService) Checkout(ctx context.Context, paymentID uuid.UUID, input *CheckoutInput) (*entity.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if len(payment.Items) == 0 && !input.AllowEmpty {
		return nil, apperror.NewValidationError("Payment has no items")
	}

	discount := payment.Discount()
	if input.Discount != nil {
		discount = input.Discount.toBilling()
	}

	totals, err := billing.Compute(payment.SubtotalInclusive(), discount)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}

	allocations, methods, err := s.resolveAllocations(input, totals.Total)
	if err != nil {
		return nil, err
	}

	result, err := billing.Reconcile(totals.Total, allocations)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if !result.Balanced {
		return nil, apperror.NewReconciliationError(result.Remaining)
	}

	invoice, err := s.buildInvoice(ctx, payment, totals, input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment.Status = enum.PaymentStatusPaid
	payment.PaidAt = &now
	if input.Discount != nil {
		discountType := input.Discount.Type
		payment.DiscountType = &discountType
		payment.DiscountValue = input.Discount.Value
		payment.DiscountReason = input.Discount.Reason
	}
	if input.Method != nil {
		payment.Method = &methods[0]
		payment.Allocations = nil
	} else {
		payment.Method = nil
		payment.Allocations = make([]entity.PartialPayment, len(allocations))
		for i, a := range allocations {
			payment.Allocations[i] = entity.PartialPayment{
				PaymentID: payment.ID,
				Method:    methods[i],
				Amount:    a.Amount,
			}
		}
	}

	if err := s.paymentRepo.MarkPaid(ctx, payment, invoice); err != nil {
		if errors.Is(err, repository.ErrPaymentNotPending) {
			// Lost the race against a concurrent checkout or cancel.
			return nil, apperror.NewStateError("Payment is no longer pending")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"user_id":     input.UserID,
		"document_no": invoice.DocumentNo,
		"total":       totals.Total,
	}).Info("payment checked out")

	return s.paymentRepo.GetWithDetails(ctx, payment.ID)
}

// resolveAllocations normalizes the two checkout shapes into one list
// of allocations plus the parsed methods, index-aligned.
func (s *PaymentService) resolveAllocations(input *CheckoutInput, total decimal.Decimal) ([]billing.Allocation, []enum.PaymentMethod, error) {
	if input.Method != nil && len(input.Allocations) > 0 {
		return nil, nil, apperror.NewValidationError("Provide either a payment method or allocations, not both")
	}

	if input.Method != nil {
		method, ok := enum.ParsePaymentMethod(*input.Method)
		if !ok {
			return nil, nil, apperror.NewValidationError(fmt.Sprintf("Unknown payment method %q", *input.Method))
		}
		return billing.SingleAllocation(method.String(), total), []enum.PaymentMethod{method}, nil
	}

	if len(input.Allocations) == 0 {
		return nil, nil, apperror.NewValidationError("A payment method or allocations are required")
	}

	allocations := make([]billing.Allocation, len(input.Allocations))
	methods := make([]enum.PaymentMethod, len(input.Allocations))
	for i, a := range input.Allocations {
		method, ok := enum.ParsePaymentMethod(a.Method)
		if !ok {
			return nil, nil, apperror.NewValidationError(fmt.Sprintf("Unknown payment method %q", a.Method))
		}
		allocations[i] = billing.Allocation{Method: method.String(), Amount: a.Amount}
		methods[i] = method
	}
	return allocations, methods, nil
}

// buildInvoice assembles the immutable invoice snapshot for a payment
// being checked out. The document number consumes the next value of the
// invoice series.
func (s *PaymentService) buildInvoice(ctx context.Context, payment *entity.Payment, totals *billing.Totals, input *CheckoutInput) (*entity.Invoice, error) {
	invoice := &entity.Invoice{
		PaymentID:      payment.ID,
		Type:           enum.InvoiceTypeSimple,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		Total:          totals.Total,
		IssuedAt:       time.Now(),
	}

	if input.UseRTN {
		var fieldErrors []apperror.FieldError
		if input.CompanyName == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "company_name", Message: "Company name is required for a legal invoice"})
		}
		if !billing.ValidRTN(input.CompanyRTN) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "company_rtn", Message: "RTN must match the format 0000-0000-000000"})
		}
		if len(fieldErrors) > 0 {
			return nil, apperror.NewFieldValidationError(fieldErrors)
		}
		rtn := billing.NormalizeRTN(input.CompanyRTN)
		invoice.Type = enum.InvoiceTypeLegal
		invoice.ClientName = input.CompanyName
		invoice.ClientRTN = &rtn
	} else {
		invoice.ClientName = fallbackClientName
		if payment.Patient != nil {
			invoice.ClientName = payment.Patient.FullName()
		}
	}

	seq, err := s.invoiceRepo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	prefix := "REC"
	if invoice.Type == enum.InvoiceTypeLegal {
		prefix = "FAC"
	}
	invoice.DocumentNo = fmt.Sprintf("%s-%08d", prefix, seq)

	invoice.Items = make([]entity.InvoiceItem, len(payment.Items))
	for i := range payment.Items {
		li := &payment.Items[i]
		description := li.Name
		if input.UseGenericDescription {
			description = GenericItemDescription
		}
		invoice.Items[i] = entity.InvoiceItem{
			Description: description,
			UnitPrice:   li.UnitPrice,
			Quantity:    li.Quantity,
			Total:       li.LineTotal(),
		}
	}
	return invoice, nil
}

// RefundInput represents the add refund input
type RefundInput struct {
	Amount decimal.Decimal
	Reason *string
}

// RefundResult carries the recorded refund and the payment's net total
// after it.
type RefundResult struct {
	Refund   *entity.Refund  `json:"refund"`
	NetTotal decimal.Decimal `json:"net_total"`
}

// AddRefund records a refund against a paid payment. The refund is
// rejected when it would push the net collected amount below zero; the
// invoice itself is never touched.
func (s *PaymentService) AddRefund(ctx context.Context, paymentID uuid.UUID, input *RefundInput) (*RefundResult, error) {
	payment, err := s.paymentRepo.GetWithDetails(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	if payment.Status != enum.PaymentStatusPaid {
		return nil, apperror.NewStateError(fmt.Sprintf("Cannot refund a %s payment", payment.Status))
	}
	if payment.Invoice == nil {
		return nil, apperror.NewStateError("Payment has no invoice")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewValidationError("Refund amount must be greater than zero")
	}

	net := billing.NetTotal(payment.Invoice.Total, payment.RefundedAmounts(), input.Amount)
	if net.IsNegative() {
		return nil, apperror.NewValidationError(fmt.Sprintf(
			"Refund of %s exceeds the remaining balance of %s",
			input.Amount, net.Add(input.Amount)))
	}

	refund := &entity.Refund{
		PaymentID: payment.ID,
		Amount:    input.Amount,
		Reason:    input.Reason,
	}
	if err := s.paymentRepo.AddRefund(ctx, refund); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"amount":     input.Amount,
		"net_total":  net,
	}).Info("refund recorded")

	return &RefundResult{Refund: refund, NetTotal: net}, nil
}

// getPending loads a payment and asserts it is still editable.
func (s *PaymentService) getPending(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	if payment.Status != enum.PaymentStatusPending {
		return nil, apperror.NewStateError(fmt.Sprintf("Cannot modify a %s payment", payment.Status))
	}
	return payment, nil
}

// activeCatalogItem loads a catalog item and rejects inactive ones,
// which must not be billable even if still visible in searches.
func (s *PaymentService) activeCatalogItem(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.Active {
		return nil, apperror.NewNotFoundError("Catalog item")
	}
	return item, nil
}
