package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicasantafe/clinica-api/internal/domain/entity"
	domainRepo "github.com/clinicasantafe/clinica-api/internal/domain/repository"
)

type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *gorm.DB) domainRepo.LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) Create(ctx context.Context, item *entity.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *lineItemRepository) Update(ctx context.Context, item *entity.LineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *lineItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.LineItem{}, "id = ?", id).Error
}

func (r *lineItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LineItem, error) {
	var item entity.LineItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}
