package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
)

type fakeReportRepo struct {
	rows     []repository.DailySummaryRow
	refunded decimal.Decimal
}

func (f *fakeReportRepo) DailySummary(ctx context.Context, day time.Time) ([]repository.DailySummaryRow, error) {
	return f.rows, nil
}

func (f *fakeReportRepo) RefundedOn(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	return f.refunded, nil
}

func TestDailySummaryNetsRefunds(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{
		rows: []repository.DailySummaryRow{
			{Method: enum.PaymentMethodEfectivo, Count: 3, Gross: d("450.00")},
			{Method: enum.PaymentMethodTarjeta, Count: 1, Gross: d("115.00")},
		},
		refunded: d("50.00"),
	})

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	summary, err := svc.GetDailySummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-10", summary.Date)
	require.Len(t, summary.Methods, 2)
	assert.Equal(t, "efectivo", summary.Methods[0].Method)
	assert.True(t, summary.Gross.Equal(d("565.00")))
	assert.True(t, summary.Refunded.Equal(d("50.00")))
	assert.True(t, summary.Net.Equal(d("515.00")))
}

func TestDailySummaryEmptyDay(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{refunded: decimal.Zero})

	summary, err := svc.GetDailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, summary.Methods)
	assert.True(t, summary.Gross.IsZero())
	assert.True(t, summary.Net.IsZero())
}
