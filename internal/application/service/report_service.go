package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
)

// ReportService aggregates paid payments for the cash-desk closing
// report. Figures are derived at read time; refunds reduce the net
// without ever rewriting invoices.
type ReportService struct {
	reportRepo repository.PaymentReportRepository
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.PaymentReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// MethodSummary is one payment-method bucket of the daily report
type MethodSummary struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Gross  decimal.Decimal `json:"gross"`
}

// DailySummary is the closing report for one day
type DailySummary struct {
	Date     string          `json:"date"`
	Methods  []MethodSummary `json:"methods"`
	Gross    decimal.Decimal `json:"gross"`
	Refunded decimal.Decimal `json:"refunded"`
	Net      decimal.Decimal `json:"net"`
}

// GetDailySummary builds the closing report for the given day
func (s *ReportService) GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	rows, err := s.reportRepo.DailySummary(ctx, day)
	if err != nil {
		return nil, err
	}
	refunded, err := s.reportRepo.RefundedOn(ctx, day)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:     day.Format("2006-01-02"),
		Methods:  make([]MethodSummary, len(rows)),
		Gross:    decimal.Zero,
		Refunded: refunded,
	}
	for i, row := range rows {
		summary.Methods[i] = MethodSummary{
			Method: row.Method.String(),
			Count:  row.Count,
			Gross:  row.Gross,
		}
		summary.Gross = summary.Gross.Add(row.Gross)
	}
	summary.Net = summary.Gross.Sub(refunded)
	return summary, nil
}
