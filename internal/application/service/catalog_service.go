package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	"github.com/clinicasantafe/clinica-api/internal/domain/repository"
	"github.com/clinicasantafe/clinica-api/pkg/apperror"
	"github.com/clinicasantafe/clinica-api/pkg/pagination"
)

// CatalogService handles catalog item and variant operations. Catalog
// edits only affect future payments; existing line items keep their
// snapshot.
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// CreateCatalogItemInput represents the create catalog item input
type CreateCatalogItemInput struct {
	Name        string
	Code        string
	Description *string
	Price       decimal.Decimal
	Active      *bool
}

// CreateCatalogItem creates a new catalog item
func (s *CatalogService) CreateCatalogItem(ctx context.Context, input *CreateCatalogItemInput) (*entity.CatalogItem, error) {
	if !input.Price.IsPositive() {
		return nil, apperror.NewValidationError("Price must be greater than zero")
	}

	item := &entity.CatalogItem{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		Price:       input.Price,
		Active:      true,
	}
	if input.Active != nil {
		item.Active = *input.Active
	}
	if err := s.catalogRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetCatalogItem retrieves a catalog item with its variants
func (s *CatalogService) GetCatalogItem(ctx context.Context, id uuid.UUID) (*entity.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Catalog item")
	}
	return item, nil
}

// UpdateCatalogItemInput represents the update catalog item input
type UpdateCatalogItemInput struct {
	Name        *string
	Code        *string
	Description *string
	Price       *decimal.Decimal
	Active      *bool
}

// UpdateCatalogItem updates a catalog item
func (s *CatalogService) UpdateCatalogItem(ctx context.Context, id uuid.UUID, input *UpdateCatalogItemInput) (*entity.CatalogItem, error) {
	item, err := s.GetCatalogItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Code != nil {
		item.Code = *input.Code
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, apperror.NewValidationError("Price must be greater than zero")
		}
		item.Price = *input.Price
	}
	if input.Active != nil {
		item.Active = *input.Active
	}

	if err := s.catalogRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteCatalogItem soft-deletes a catalog item. Line items referencing
// it are snapshots and remain valid.
func (s *CatalogService) DeleteCatalogItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCatalogItem(ctx, id); err != nil {
		return err
	}
	return s.catalogRepo.Delete(ctx, id)
}

// ListCatalogItems lists catalog items with pagination and search
func (s *CatalogService) ListCatalogItems(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.CatalogItem], error) {
	items, total, err := s.catalogRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, p), nil
}

// VariantInput represents the create/update variant input
type VariantInput struct {
	Name  string
	Price decimal.Decimal
}

// CreateVariant adds a priced variant to a catalog item
func (s *CatalogService) CreateVariant(ctx context.Context, itemID uuid.UUID, input *VariantInput) (*entity.ItemVariant, error) {
	item, err := s.GetCatalogItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !input.Price.IsPositive() {
		return nil, apperror.NewValidationError("Price must be greater than zero")
	}

	variant := &entity.ItemVariant{
		CatalogItemID: item.ID,
		Name:          input.Name,
		Price:         input.Price,
	}
	if err := s.catalogRepo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant updates a variant of a catalog item
func (s *CatalogService) UpdateVariant(ctx context.Context, itemID, variantID uuid.UUID, input *VariantInput) (*entity.ItemVariant, error) {
	item, err := s.GetCatalogItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	variant := item.Variant(variantID)
	if variant == nil {
		return nil, apperror.NewNotFoundError("Item variant")
	}
	if !input.Price.IsPositive() {
		return nil, apperror.NewValidationError("Price must be greater than zero")
	}

	variant.Name = input.Name
	variant.Price = input.Price
	if err := s.catalogRepo.UpdateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant removes a variant from a catalog item
func (s *CatalogService) DeleteVariant(ctx context.Context, itemID, variantID uuid.UUID) error {
	item, err := s.GetCatalogItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Variant(variantID) == nil {
		return apperror.NewNotFoundError("Item variant")
	}
	return s.catalogRepo.DeleteVariant(ctx, variantID)
}
