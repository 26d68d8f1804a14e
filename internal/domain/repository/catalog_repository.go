package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// CatalogRepository defines the interface for catalog item operations
type CatalogRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	// GetByID loads the item with its variants.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error)
	Update(ctx context.Context, item *entity.CatalogItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CatalogFilterParams) ([]entity.CatalogItem, int64, error)

	CreateVariant(ctx context.Context, variant *entity.ItemVariant) error
	UpdateVariant(ctx context.Context, variant *entity.ItemVariant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// CatalogFilterParams contains filtering parameters for catalog queries
type CatalogFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ActiveOnly bool
}
