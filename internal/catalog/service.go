package catalog

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
)

// QuoteDTO is the authoritative answer for one product on the oracle wire.
type QuoteDTO struct {
	Price float64 `json:"price"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
}

// Service exposes the price oracle operations.
type Service interface {
	Quotes(ctx context.Context, productIDs []string) (map[string]QuoteDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds the quote service backed by the catalog repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Quotes resolves current prices for the requested ids. Unknown or inactive
// products are simply absent from the result; an empty request yields an
// empty map.
func (s *service) Quotes(ctx context.Context, productIDs []string) (map[string]QuoteDTO, error) {
	quotes := map[string]QuoteDTO{}
	if len(productIDs) == 0 {
		return quotes, nil
	}

	products, err := s.repo.ListActiveByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading catalog prices")
	}

	for _, product := range products {
		if product.PriceCents <= 0 {
			// Data-quality guard: never publish a non-positive price.
			continue
		}
		price, _ := product.Price().Float64()
		quotes[product.ID] = QuoteDTO{
			Price: price,
			Name:  product.Name,
			Slug:  product.Slug,
		}
	}
	return quotes, nil
}
