package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/cartvault/pkg/config"
	"github.com/angelmondragon/cartvault/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const pricesPath = "/api/v1/prices"

// Quote is the authoritative price record for one product.
type Quote struct {
	Price decimal.Decimal
	Name  string
	Slug  string
}

// QuoteMap maps product ids to their authoritative quotes.
type QuoteMap map[string]Quote

// Client fetches authoritative prices in a single batched request.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
}

var validate = validator.New()

type lookupRequest struct {
	ProductIDs []string `json:"productIds"`
}

type quoteEntry struct {
	Price decimal.Decimal `json:"price" validate:"required"`
	Name  string          `json:"name" validate:"required"`
	Slug  string          `json:"slug"`
}

type lookupResponse struct {
	Prices map[string]quoteEntry `json:"prices"`
}

// NewClient builds an oracle client from configuration.
func NewClient(cfg config.OracleConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("oracle base url is required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// Lookup resolves authoritative quotes for the given product ids. An empty id
// set short-circuits to an empty map without a network call. Entries failing
// boundary validation (missing name, price not strictly positive) are dropped
// so the caller keeps its stored price for those products.
func (c *Client) Lookup(ctx context.Context, productIDs []string) (QuoteMap, error) {
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return QuoteMap{}, nil
	}

	body, err := json.Marshal(lookupRequest{ProductIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("encoding price lookup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pricesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building price lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price lookup request: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price lookup returned status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding price lookup response: %w", err)
	}

	quotes := make(QuoteMap, len(payload.Prices))
	for id, entry := range payload.Prices {
		if err := validate.Struct(entry); err != nil || !entry.Price.IsPositive() {
			if c.logg != nil {
				ctx := c.logg.WithFields(ctx, map[string]any{
					"product_id": id,
					"price":      entry.Price.String(),
				})
				c.logg.Warn(ctx, "oracle.quote_rejected")
			}
			continue
		}
		quotes[id] = Quote{Price: entry.Price, Name: entry.Name, Slug: entry.Slug}
	}
	return quotes, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
