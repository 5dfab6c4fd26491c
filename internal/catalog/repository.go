package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository defines the persistence surface required by the quote service.
type Repository interface {
	ListActiveByIDs(ctx context.Context, ids []string) ([]Product, error)
	Upsert(ctx context.Context, product *Product) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (r *repository) Upsert(ctx context.Context, product *Product) error {
	if product == nil {
		return fmt.Errorf("product required")
	}
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("saving product: %w", err)
	}
	return nil
}
