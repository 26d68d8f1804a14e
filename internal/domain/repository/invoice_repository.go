package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// InvoiceRepository defines read access to emitted invoices. Invoices
// are only ever written through PaymentRepository.MarkPaid.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByDocumentNo(ctx context.Context, documentNo string) (*entity.Invoice, error)
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// NextSequence reserves the next number of the document series used
	// for invoice numbering.
	NextSequence(ctx context.Context) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	StartDate  *time.Time
	EndDate    *time.Time
}
