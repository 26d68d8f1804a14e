package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogItem represents a billable clinic service or product. Its
// price is the live catalog price; payments copy it into a line-item
// snapshot at add-time and never read it again.
type CatalogItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Code        string          `gorm:"size:100;unique;not null" json:"code"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variants []ItemVariant `gorm:"foreignKey:CatalogItemID" json:"variants,omitempty"`
}

// BeforeCreate generates a UUID before creating a new catalog item
func (i *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// Variant returns the variant with the given id, if the item has one.
func (i *CatalogItem) Variant(variantID uuid.UUID) *ItemVariant {
	for idx := range i.Variants {
		if i.Variants[idx].ID == variantID {
			return &i.Variants[idx]
		}
	}
	return nil
}

// ItemVariant is a priced variation of a catalog item (e.g. a
// consultation with a specialist instead of the general rate). The
// variant carries its own price; the base price is never used when a
// variant is billed.
type ItemVariant struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CatalogItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"catalog_item_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	CatalogItem CatalogItem `gorm:"foreignKey:CatalogItemID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new variant
func (v *ItemVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ItemVariant model
func (ItemVariant) TableName() string {
	return "item_variants"
}
