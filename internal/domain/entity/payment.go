package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
	"github.com/clinicasantafe/clinica-api/pkg/billing"
)

// Payment represents one billing transaction for a patient: a mutable
// cart of line items while pending, a frozen financial record once paid
// or cancelled.
type Payment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	PatientID *uuid.UUID         `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	UserID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	Status    enum.PaymentStatus `gorm:"default:0;index" json:"status"`

	// Discount is optional; the three columns are only meaningful when
	// DiscountType is set. The persisted discount is the single source
	// of truth; in-progress form edits live client-side until checkout.
	DiscountType   *enum.DiscountType `json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"discount_value"`
	DiscountReason *string            `gorm:"size:255" json:"discount_reason,omitempty"`

	// Method is set for single-method payments; split payments carry
	// Allocations instead. Never both.
	Method *enum.PaymentMethod `json:"method,omitempty"`

	PaidAt    *time.Time     `json:"paid_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Patient     *Patient         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	User        User             `gorm:"foreignKey:UserID" json:"-"`
	Items       []LineItem       `gorm:"foreignKey:PaymentID" json:"items,omitempty"`
	Allocations []PartialPayment `gorm:"foreignKey:PaymentID" json:"allocations,omitempty"`
	Refunds     []Refund         `gorm:"foreignKey:PaymentID" json:"refunds,omitempty"`
	Invoice     *Invoice         `gorm:"foreignKey:PaymentID" json:"invoice,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// SubtotalInclusive is the tax-inclusive sum of all line totals.
func (p *Payment) SubtotalInclusive() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.Items {
		sum = sum.Add(p.Items[i].LineTotal())
	}
	return sum
}

// Discount converts the persisted discount columns into the billing
// engine's representation, or nil when no discount is set.
func (p *Payment) Discount() *billing.Discount {
	if p.DiscountType == nil {
		return nil
	}
	d := &billing.Discount{Value: p.DiscountValue}
	if *p.DiscountType == enum.DiscountTypeAbsolute {
		d.Type = billing.DiscountAbsolute
	} else {
		d.Type = billing.DiscountPercentage
	}
	if p.DiscountReason != nil {
		d.Reason = *p.DiscountReason
	}
	return d
}

// RefundedAmounts returns the amounts of all recorded refunds, in
// insertion order.
func (p *Payment) RefundedAmounts() []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(p.Refunds))
	for i := range p.Refunds {
		amounts[i] = p.Refunds[i].Amount
	}
	return amounts
}

// LineItem is one snapshotted cart entry. Name and UnitPrice are copied
// from the catalog (or typed in for custom items) when the item is
// added and never change afterwards, so billing history survives
// catalog edits.
type LineItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	CatalogItemID *uuid.UUID      `gorm:"type:uuid;index" json:"catalog_item_id,omitempty"`
	VariantID     *uuid.UUID      `gorm:"type:uuid" json:"variant_id,omitempty"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	IsCustom      bool            `gorm:"default:false" json:"is_custom"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new line item
func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// LineTotal is the tax-inclusive total for this line.
func (li *LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PartialPayment is one method/amount pair of a split payment. All
// allocations of a payment together must reconcile against the
// computed total.
type PartialPayment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID          `gorm:"type:uuid;not null;index" json:"payment_id"`
	Method    enum.PaymentMethod `gorm:"not null" json:"method"`
	Amount    decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt time.Time          `json:"created_at"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new partial payment
func (pp *PartialPayment) BeforeCreate(tx *gorm.DB) error {
	if pp.ID == uuid.Nil {
		pp.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PartialPayment model
func (PartialPayment) TableName() string {
	return "partial_payments"
}

// Refund records money returned against a paid payment. Refunds are
// append-only and never rewrite the emitted invoice; reporting
// subtracts them at read time.
type Refund struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Reason    *string         `gorm:"size:255" json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new refund
func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Refund model
func (Refund) TableName() string {
	return "refunds"
}
