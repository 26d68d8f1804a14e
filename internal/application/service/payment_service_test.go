package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/pkg/apperror"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// fakeStore is an in-memory stand-in for every repository the payment
// service depends on.
type fakeStore struct {
	payments map[uuid.UUID]*entity.Payment
	catalog  map[uuid.UUID]*entity.CatalogItem
	patients map[uuid.UUID]*entity.Patient
	invoices map[uuid.UUID]*entity.Invoice
	sequence int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments: make(map[uuid.UUID]*entity.Payment),
		catalog:  make(map[uuid.UUID]*entity.CatalogItem),
		patients: make(map[uuid.UUID]*entity.Patient),
		invoices: make(map[uuid.UUID]*entity.Invoice),
	}
}

// PaymentRepository

func (f *fakeStore) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return f.payments[id], nil
}

func (f *fakeStore) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return f.payments[id], nil
}

func (f *fakeStore) Update(ctx context.Context, payment *entity.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.PaymentStatus) error {
	f.payments[id].Status = status
	return nil
}

func (f *fakeStore) List(ctx context.Context, params *repository.PaymentFilterParams) ([]entity.Payment, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) ListWithCursor(ctx context.Context, params *repository.PaymentCursorFilterParams) ([]entity.Payment, error) {
	return nil, nil
}

func (f *fakeStore) MarkPaid(ctx context.Context, payment *entity.Payment, invoice *entity.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	payment.Invoice = invoice
	f.payments[payment.ID] = payment
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeStore) AddRefund(ctx context.Context, refund *entity.Refund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	p := f.payments[refund.PaymentID]
	p.Refunds = append(p.Refunds, *refund)
	return nil
}

// LineItemRepository

func (f *fakeStore) CreateItem(ctx context.Context, item *entity.LineItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	p := f.payments[item.PaymentID]
	p.Items = append(p.Items, *item)
	return nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, item *entity.LineItem) error {
	p := f.payments[item.PaymentID]
	for i := range p.Items {
		if p.Items[i].ID == item.ID {
			p.Items[i] = *item
		}
	}
	return nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	for _, p := range f.payments {
		for i := range p.Items {
			if p.Items[i].ID == id {
				p.Items = append(p.Items[:i], p.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeStore) GetItemByID(ctx context.Context, id uuid.UUID) (*entity.LineItem, error) {
	for _, p := range f.payments {
		for i := range p.Items {
			if p.Items[i].ID == id {
				item := p.Items[i]
				return &item, nil
			}
		}
	}
	return nil, nil
}

// lineItemAdapter exposes the fake store under the LineItemRepository
// method names.
type lineItemAdapter struct{ *fakeStore }

func (a lineItemAdapter) Create(ctx context.Context, item *entity.LineItem) error {
	return a.CreateItem(ctx, item)
}
func (a lineItemAdapter) Update(ctx context.Context, item *entity.LineItem) error {
	return a.UpdateItem(ctx, item)
}
func (a lineItemAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.DeleteItem(ctx, id)
}
func (a lineItemAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.LineItem, error) {
	return a.GetItemByID(ctx, id)
}

// CatalogRepository

type catalogAdapter struct{ *fakeStore }

func (a catalogAdapter) Create(ctx context.Context, item *entity.CatalogItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	a.catalog[item.ID] = item
	return nil
}

func (a catalogAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	return a.catalog[id], nil
}

func (a catalogAdapter) Update(ctx context.Context, item *entity.CatalogItem) error {
	a.catalog[item.ID] = item
	return nil
}

func (a catalogAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	delete(a.catalog, id)
	return nil
}

func (a catalogAdapter) List(ctx context.Context, params *repository.CatalogFilterParams) ([]entity.CatalogItem, int64, error) {
	return nil, 0, nil
}

func (a catalogAdapter) CreateVariant(ctx context.Context, variant *entity.ItemVariant) error {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	item := a.catalog[variant.CatalogItemID]
	item.Variants = append(item.Variants, *variant)
	return nil
}

func (a catalogAdapter) UpdateVariant(ctx context.Context, variant *entity.ItemVariant) error {
	item := a.catalog[variant.CatalogItemID]
	for i := range item.Variants {
		if item.Variants[i].ID == variant.ID {
			item.Variants[i] = *variant
		}
	}
	return nil
}

func (a catalogAdapter) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return nil
}

// PatientRepository

type patientAdapter struct{ *fakeStore }

func (a patientAdapter) Create(ctx context.Context, patient *entity.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	a.patients[patient.ID] = patient
	return nil
}

func (a patientAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	return a.patients[id], nil
}

func (a patientAdapter) Update(ctx context.Context, patient *entity.Patient) error {
	a.patients[patient.ID] = patient
	return nil
}

func (a patientAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	delete(a.patients, id)
	return nil
}

func (a patientAdapter) List(ctx context.Context, params *repository.PatientFilterParams) ([]entity.Patient, int64, error) {
	return nil, 0, nil
}

// InvoiceRepository

type invoiceAdapter struct{ *fakeStore }

func (a invoiceAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return a.invoices[id], nil
}

func (a invoiceAdapter) GetByDocumentNo(ctx context.Context, documentNo string) (*entity.Invoice, error) {
	for _, inv := range a.invoices {
		if inv.DocumentNo == documentNo {
			return inv, nil
		}
	}
	return nil, nil
}

func (a invoiceAdapter) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*entity.Invoice, error) {
	for _, inv := range a.invoices {
		if inv.PaymentID == paymentID {
			return inv, nil
		}
	}
	return nil, nil
}

func (a invoiceAdapter) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return nil, 0, nil
}

func (a invoiceAdapter) NextSequence(ctx context.Context) (int64, error) {
	a.sequence++
	return a.sequence, nil
}

func newTestService() (*PaymentService, *fakeStore) {
	store := newFakeStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewPaymentService(
		store,
		lineItemAdapter{store},
		catalogAdapter{store},
		patientAdapter{store},
		invoiceAdapter{store},
		logger,
	)
	return svc, store
}

func seedCatalogItem(t *testing.T, store *fakeStore, name, price string) *entity.CatalogItem {
	t.Helper()
	item := &entity.CatalogItem{
		ID:     uuid.New(),
		Name:   name,
		Code:   name,
		Price:  d(price),
		Active: true,
	}
	store.catalog[item.ID] = item
	return item
}

func newPendingPayment(t *testing.T, svc *PaymentService) *entity.Payment {
	t.Helper()
	payment, err := svc.CreatePayment(context.Background(), &CreatePaymentInput{UserID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, enum.PaymentStatusPending, payment.Status)
	return payment
}

func TestAddItemSnapshotsCatalogPrice(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta General", "500.00")
	payment := newPendingPayment(t, svc)

	updated, err := svc.AddItem(ctx, payment.ID, &AddItemInput{
		Source:        ItemSourceCatalog,
		CatalogItemID: &item.ID,
		Quantity:      2,
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Consulta General", updated.Items[0].Name)
	assert.True(t, updated.Items[0].UnitPrice.Equal(d("500.00")))

	// A later catalog price change must not reach the existing line.
	item.Price = d("999.00")
	got, err := svc.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitPrice.Equal(d("500.00")))
	assert.True(t, got.SubtotalInclusive().Equal(d("1000.00")))
}

func TestAddItemVariantUsesVariantPrice(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "500.00")
	variant := entity.ItemVariant{ID: uuid.New(), CatalogItemID: item.ID, Name: "Especialista", Price: d("800.00")}
	item.Variants = []entity.ItemVariant{variant}

	payment := newPendingPayment(t, svc)
	updated, err := svc.AddItem(ctx, payment.ID, &AddItemInput{
		Source:        ItemSourceVariant,
		CatalogItemID: &item.ID,
		VariantID:     &variant.ID,
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Consulta - Especialista", updated.Items[0].Name)
	assert.True(t, updated.Items[0].UnitPrice.Equal(d("800.00")))
	assert.Equal(t, 1, updated.Items[0].Quantity)
}

func TestAddItemRejectsInactiveCatalogItem(t *testing.T) {
	svc, store := newTestService()

	item := seedCatalogItem(t, store, "Suspendido", "100.00")
	item.Active = false
	payment := newPendingPayment(t, svc)

	_, err := svc.AddItem(context.Background(), payment.ID, &AddItemInput{
		Source:        ItemSourceCatalog,
		CatalogItemID: &item.ID,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestAddItemCustomRequiresNameAndPrice(t *testing.T) {
	svc, _ := newTestService()
	payment := newPendingPayment(t, svc)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCustom, UnitPrice: d("50")})
	require.Error(t, err)

	_, err = svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCustom, Name: "Inyección"})
	require.Error(t, err)

	updated, err := svc.AddItem(ctx, payment.ID, &AddItemInput{
		Source: ItemSourceCustom, Name: "Inyección", UnitPrice: d("50"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Items[0].IsCustom)
}

func TestCheckoutSingleMethod(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "efectivo"
	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.NoError(t, err)

	assert.Equal(t, enum.PaymentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.Method)
	assert.Equal(t, enum.PaymentMethodEfectivo, *paid.Method)
	assert.Empty(t, paid.Allocations)

	require.NotNil(t, paid.Invoice)
	assert.Equal(t, "REC-00000001", paid.Invoice.DocumentNo)
	assert.Equal(t, enum.InvoiceTypeSimple, paid.Invoice.Type)
	assert.Equal(t, "Consumidor Final", paid.Invoice.ClientName)
	assert.True(t, paid.Invoice.Subtotal.Equal(d("100.00")))
	assert.True(t, paid.Invoice.Tax.Equal(d("15.00")))
	assert.True(t, paid.Invoice.Total.Equal(d("115.00")))
	require.Len(t, paid.Invoice.Items, 1)
	assert.Equal(t, "Consulta", paid.Invoice.Items[0].Description)
}

func TestCheckoutWithDiscountBeforeTax(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "tarjeta"
	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Method:   &method,
		Discount: &DiscountInput{Type: enum.DiscountTypePercentage, Value: d("10")},
	})
	require.NoError(t, err)

	// Discount applies to the tax-exclusive base, so tax shrinks too.
	assert.True(t, paid.Invoice.DiscountAmount.Equal(d("10.00")))
	assert.True(t, paid.Invoice.Tax.Equal(d("13.50")))
	assert.True(t, paid.Invoice.Total.Equal(d("103.50")))
}

func TestCheckoutSplitAllocations(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "100.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Allocations: []AllocationInput{
			{Method: "efectivo", Amount: d("60.00")},
			{Method: "tarjeta", Amount: d("40.005")},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, paid.Method)
	require.Len(t, paid.Allocations, 2)
	assert.Equal(t, enum.PaymentMethodEfectivo, paid.Allocations[0].Method)
	assert.Equal(t, enum.PaymentMethodTarjeta, paid.Allocations[1].Method)
}

func TestCheckoutUnderfundedRejected(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "100.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Allocations: []AllocationInput{{Method: "efectivo", Amount: d("90.00")}},
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	require.NotNil(t, appErr.Remaining)
	assert.True(t, appErr.Remaining.Equal(d("10.00")))

	// Nothing was persisted: the payment is still editable.
	got, err := svc.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPending, got.Status)
	assert.Nil(t, got.Invoice)
}

func TestCheckoutRejectsMethodAndAllocationsTogether(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "100.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "efectivo"
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Method:      &method,
		Allocations: []AllocationInput{{Method: "tarjeta", Amount: d("100.00")}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestCheckoutEmptyPaymentNeedsOverride(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	payment := newPendingPayment(t, svc)

	method := "efectivo"
	_, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	// With the override a zero-total invoice cannot reconcile against a
	// positive allocation, so the only valid shape is a tiny allocation
	// within tolerance. Recording after the fact still goes through the
	// same reconciliation.
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{
		AllowEmpty:  true,
		Allocations: []AllocationInput{{Method: "efectivo", Amount: d("0.01")}},
	})
	require.NoError(t, err)
}

func TestCheckoutLegalInvoiceRequiresValidRTN(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "transferencia"
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Method:      &method,
		UseRTN:      true,
		CompanyName: "Inversiones del Valle S.A.",
		CompanyRTN:  "1234",
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "company_rtn", appErr.Errors[0].Field)

	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Method:      &method,
		UseRTN:      true,
		CompanyName: "Inversiones del Valle S.A.",
		CompanyRTN:  "08011999123456",
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceTypeLegal, paid.Invoice.Type)
	assert.Equal(t, "FAC-00000001", paid.Invoice.DocumentNo)
	assert.Equal(t, "Inversiones del Valle S.A.", paid.Invoice.ClientName)
	require.NotNil(t, paid.Invoice.ClientRTN)
	assert.Equal(t, "0801-1999-123456", *paid.Invoice.ClientRTN)
}

func TestCheckoutGenericDescriptionKeepsLineItems(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Ultrasonido", "800.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "efectivo"
	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{
		Method:                &method,
		UseGenericDescription: true,
	})
	require.NoError(t, err)
	require.Len(t, paid.Invoice.Items, 1)
	assert.Equal(t, GenericItemDescription, paid.Invoice.Items[0].Description)
	assert.Equal(t, "Ultrasonido", paid.Items[0].Name)
}

func TestPaidPaymentRejectsMutation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	updated, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)
	itemID := updated.Items[0].ID

	method := "efectivo"
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = svc.RemoveItem(ctx, payment.ID, itemID)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = svc.SetQuantity(ctx, payment.ID, itemID, 3)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = svc.Cancel(ctx, payment.ID)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestCancelIsTerminal(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)

	cancelled, err := svc.Cancel(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, payment.ID)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	method := "efectivo"
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestSetDiscountValidatesAgainstSubtotal(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	// Subtotal is 100 pre-tax; an absolute discount above it is
	// rejected, not clamped.
	_, err = svc.SetDiscount(ctx, payment.ID, &DiscountInput{Type: enum.DiscountTypeAbsolute, Value: d("150")})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = svc.SetDiscount(ctx, payment.ID, &DiscountInput{Type: enum.DiscountTypePercentage, Value: d("101")})
	require.Error(t, err)

	updated, err := svc.SetDiscount(ctx, payment.ID, &DiscountInput{Type: enum.DiscountTypeAbsolute, Value: d("20")})
	require.NoError(t, err)
	require.NotNil(t, updated.DiscountType)
	assert.Equal(t, enum.DiscountTypeAbsolute, *updated.DiscountType)

	cleared, err := svc.ClearDiscount(ctx, payment.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.DiscountType)
}

func TestTotalsPreviewCapsOversizedDiscount(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "115.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	// Force an oversized discount directly; items removed after a
	// discount was set can leave the payment in this state.
	stored := store.payments[payment.ID]
	discountType := enum.DiscountTypeAbsolute
	stored.DiscountType = &discountType
	stored.DiscountValue = d("150")

	preview, err := svc.Totals(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, preview.EffectiveDiscount.Equal(d("100")))
	assert.True(t, preview.Totals.Total.Equal(d("0.00")))

	// Checkout still refuses it.
	method := "efectivo"
	_, err = svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestRefundLifecycle(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	item := seedCatalogItem(t, store, "Consulta", "200.00")
	payment := newPendingPayment(t, svc)
	_, err := svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	// Refunds are only valid on paid payments.
	_, err = svc.AddRefund(ctx, payment.ID, &RefundInput{Amount: d("10")})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	method := "efectivo"
	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.NoError(t, err)
	invoiceTotal := paid.Invoice.Total

	first, err := svc.AddRefund(ctx, payment.ID, &RefundInput{Amount: d("50.00")})
	require.NoError(t, err)
	assert.True(t, first.NetTotal.Equal(d("150.00")))

	second, err := svc.AddRefund(ctx, payment.ID, &RefundInput{Amount: d("30.00")})
	require.NoError(t, err)
	assert.True(t, second.NetTotal.Equal(d("120.00")))

	// A refund that would push the net below zero is rejected and
	// nothing is recorded.
	_, err = svc.AddRefund(ctx, payment.ID, &RefundInput{Amount: d("150.00")})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	got, err := svc.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Len(t, got.Refunds, 2)

	// The invoice is untouched by refunds.
	assert.True(t, got.Invoice.Total.Equal(invoiceTotal))

	_, err = svc.AddRefund(ctx, payment.ID, &RefundInput{Amount: d("-5")})
	require.Error(t, err)
}

func TestCreatePaymentValidatesPatient(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	missing := uuid.New()
	_, err := svc.CreatePayment(ctx, &CreatePaymentInput{UserID: uuid.New(), PatientID: &missing})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	patient := &entity.Patient{ID: uuid.New(), FirstName: "María", LastName: "Lopez"}
	store.patients[patient.ID] = patient

	payment, err := svc.CreatePayment(ctx, &CreatePaymentInput{UserID: uuid.New(), PatientID: &patient.ID})
	require.NoError(t, err)
	require.NotNil(t, payment.PatientID)

	// The simple receipt is addressed to the patient.
	store.payments[payment.ID].Patient = patient
	item := seedCatalogItem(t, store, "Consulta", "115.00")
	_, err = svc.AddItem(ctx, payment.ID, &AddItemInput{Source: ItemSourceCatalog, CatalogItemID: &item.ID})
	require.NoError(t, err)

	method := "efectivo"
	paid, err := svc.Checkout(ctx, payment.ID, &CheckoutInput{Method: &method})
	require.NoError(t, err)
	assert.Equal(t, "María Lopez", paid.Invoice.ClientName)
}
