package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog row. Prices are stored in cents; the oracle surface
// exposes them as decimal amounts.
type Product struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Slug         string    `gorm:"uniqueIndex;not null"`
	CategorySlug string    `gorm:"not null;default:''"`
	PriceCents   int64     `gorm:"not null"`
	Active       bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// Price converts the stored cents to a decimal amount.
func (p Product) Price() decimal.Decimal {
	return decimal.NewFromInt(p.PriceCents).Div(decimal.NewFromInt(100))
}
