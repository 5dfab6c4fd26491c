package cart

import "github.com/shopspring/decimal"

// AddLineRequest carries one add-to-cart event. UnitPrice is the caller's
// price snapshot; it is provisional until the next reconciliation.
type AddLineRequest struct {
	ProductID     string          `json:"productId" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unitPrice" validate:"required"`
	Quantity      int             `json:"quantity" validate:"omitempty,min=1"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	PrintPosition string          `json:"printPosition"`
	Image         string          `json:"image"`
	Slug          string          `json:"slug"`
	CategorySlug  string          `json:"categorySlug"`
}

// SetQuantityRequest sets a line's quantity exactly; zero removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}
