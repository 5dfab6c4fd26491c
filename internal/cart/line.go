package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product-variant-quantity selection in the cart. Its ID is
// generated locally and stays stable for the line's lifetime; two lines with
// the same variant key are the same logical line and are always merged.
type Line struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	Color         string          `json:"color,omitempty"`
	Size          string          `json:"size,omitempty"`
	PrintPosition string          `json:"printPosition,omitempty"`
	Image         string          `json:"image,omitempty"`
	Slug          string          `json:"slug,omitempty"`
	CategorySlug  string          `json:"categorySlug,omitempty"`
}

// VariantKey identifies a purchasable variant of a product.
type VariantKey struct {
	ProductID string
	Color     string
	Size      string
}

// Variant returns the line's merge identity.
func (l Line) Variant() VariantKey {
	return VariantKey{ProductID: l.ProductID, Color: l.Color, Size: l.Size}
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewLineID mints a fresh line identifier.
func NewLineID() string {
	return uuid.NewString()
}
