package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/pkg/apperror"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// InvoiceService exposes read access to emitted invoices. Invoices are
// created exclusively through payment checkout and never modified.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo repository.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// GetInvoice retrieves an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// GetInvoiceByDocumentNo retrieves an invoice by its document number
func (s *InvoiceService) GetInvoiceByDocumentNo(ctx context.Context, documentNo string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByDocumentNo(ctx, documentNo)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// GetInvoiceForPayment retrieves the invoice emitted for a payment
func (s *InvoiceService) GetInvoiceForPayment(ctx context.Context, paymentID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with pagination and an optional date range
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, p), nil
}
