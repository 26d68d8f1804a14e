package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	domainRepo "github.com/clinicasantafe/clinica-api/internal/domain/repository"
)

type paymentReportRepository struct {
	db *gorm.DB
}

// NewPaymentReportRepository creates a new payment report repository
func NewPaymentReportRepository(db *gorm.DB) domainRepo.PaymentReportRepository {
	return &paymentReportRepository{db: db}
}

// dayRange returns the half-open [start, end) interval of the given day
// in the server's timezone.
func dayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// DailySummary aggregates invoiced totals by payment method for
// payments paid on the given day. Split payments contribute each
// allocation to its own method bucket; refunds do not reduce the gross.
func (r *paymentReportRepository) DailySummary(ctx context.Context, day time.Time) ([]domainRepo.DailySummaryRow, error) {
	start, end := dayRange(day)

	type bucket struct {
		Method enum.PaymentMethod
		Count  int
		Gross  decimal.Decimal
	}

	var single []bucket
	err := r.db.WithContext(ctx).
		Table("payments").
		Select("payments.method AS method, COUNT(*) AS count, COALESCE(SUM(invoices.total), 0) AS gross").
		Joins("JOIN invoices ON invoices.payment_id = payments.id").
		Where("payments.status = ?", enum.PaymentStatusPaid).
		Where("payments.method IS NOT NULL").
		Where("payments.paid_at >= ? AND payments.paid_at < ?", start, end).
		Group("payments.method").
		Scan(&single).Error
	if err != nil {
		return nil, err
	}

	var split []bucket
	err = r.db.WithContext(ctx).
		Table("partial_payments").
		Select("partial_payments.method AS method, COUNT(*) AS count, COALESCE(SUM(partial_payments.amount), 0) AS gross").
		Joins("JOIN payments ON payments.id = partial_payments.payment_id").
		Where("payments.status = ?", enum.PaymentStatusPaid).
		Where("payments.paid_at >= ? AND payments.paid_at < ?", start, end).
		Group("partial_payments.method").
		Scan(&split).Error
	if err != nil {
		return nil, err
	}

	merged := make(map[enum.PaymentMethod]*domainRepo.DailySummaryRow)
	for _, b := range append(single, split...) {
		row, ok := merged[b.Method]
		if !ok {
			row = &domainRepo.DailySummaryRow{Method: b.Method, Gross: decimal.Zero}
			merged[b.Method] = row
		}
		row.Count += b.Count
		row.Gross = row.Gross.Add(b.Gross)
	}

	rows := make([]domainRepo.DailySummaryRow, 0, len(merged))
	for _, method := range []enum.PaymentMethod{
		enum.PaymentMethodEfectivo,
		enum.PaymentMethodTarjeta,
		enum.PaymentMethodTransferencia,
	} {
		if row, ok := merged[method]; ok {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

// RefundedOn sums refund amounts recorded on the given day.
func (r *paymentReportRepository) RefundedOn(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	start, end := dayRange(day)

	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("refunds").
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
