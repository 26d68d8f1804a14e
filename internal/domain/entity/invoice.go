package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clinicasantafe/clinica-api/internal/domain/enum"
)

// Invoice is the immutable fiscal snapshot emitted at the moment its
// payment becomes paid. It is never recomputed from live data; later
// catalog or patient edits, and even refunds, leave it untouched.
type Invoice struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID      uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"payment_id"`
	Type           enum.InvoiceType `gorm:"default:0" json:"type"`
	DocumentNo     string           `gorm:"size:100;unique;not null" json:"document_no"`
	ClientName     string           `gorm:"size:255;not null" json:"client_name"`
	ClientRTN      *string          `gorm:"size:50" json:"client_rtn,omitempty"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	Tax            decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"tax"`
	Total          decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total"`
	IssuedAt       time.Time        `gorm:"not null" json:"issued_at"`
	CreatedAt      time.Time        `json:"created_at"`

	// Relationships
	Payment Payment       `gorm:"foreignKey:PaymentID" json:"-"`
	Items   []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is one printed line of an invoice. It duplicates the
// payment's line-item snapshot (possibly with a generic description)
// so the legal record stands on its own.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
