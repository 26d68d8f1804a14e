package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// ErrPaymentNotPending is returned by MarkPaid when the payment left
// the pending state between the service's check and the transaction,
// for example because a concurrent checkout won the race.
var ErrPaymentNotPending = errors.New("payment is not pending")

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	// GetWithDetails loads a payment together with its items,
	// allocations, refunds, invoice and patient.
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PaymentStatus) error
	List(ctx context.Context, params *PaymentFilterParams) ([]entity.Payment, int64, error)
	ListWithCursor(ctx context.Context, params *PaymentCursorFilterParams) ([]entity.Payment, error)

	// MarkPaid persists the paid transition, the final payment record
	// (method or allocations) and the invoice snapshot in a single
	// transaction. Either all of it lands or none of it does.
	MarkPaid(ctx context.Context, payment *entity.Payment, invoice *entity.Invoice) error

	AddRefund(ctx context.Context, refund *entity.Refund) error
}

// PaymentFilterParams contains filtering parameters for payment queries
type PaymentFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.PaymentStatus
	PatientID  *uuid.UUID
	UserID     *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// PaymentCursorFilterParams contains cursor-based filtering for payment queries
type PaymentCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	Status    *enum.PaymentStatus
	PatientID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// LineItemRepository defines the interface for line-item operations.
// Mutations are only ever issued for pending payments; the service
// enforces that precondition before calling in.
type LineItemRepository interface {
	Create(ctx context.Context, item *entity.LineItem) error
	Update(ctx context.Context, item *entity.LineItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.LineItem, error)
}

// DailySummaryRow is one payment-method bucket of a day's revenue.
type DailySummaryRow struct {
	Method enum.PaymentMethod
	Count  int
	Gross  decimal.Decimal
}

// PaymentReportRepository defines aggregation queries over paid payments
type PaymentReportRepository interface {
	// DailySummary aggregates invoiced totals by payment method for
	// payments paid on the given day.
	DailySummary(ctx context.Context, day time.Time) ([]DailySummaryRow, error)
	// RefundedOn sums refund amounts recorded on the given day.
	RefundedOn(ctx context.Context, day time.Time) (decimal.Decimal, error)
}
