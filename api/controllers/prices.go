package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/cartvault/api/responses"
	"github.com/angelmondragon/cartvault/api/validators"
	"github.com/angelmondragon/cartvault/internal/catalog"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

// PriceLookupRequest is the oracle wire request. A missing or empty id list
// yields an empty price map, not an error.
type PriceLookupRequest struct {
	ProductIDs []string `json:"productIds"`
}

type priceLookupResponse struct {
	Prices map[string]catalog.QuoteDTO `json:"prices"`
}

// PriceLookup serves the batched authoritative price endpoint consumed by
// cart reconciliation. The response shape is a fixed contract: the price map
// is returned bare, not wrapped in the API success envelope.
func PriceLookup(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload PriceLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotes, err := svc.Quotes(r.Context(), payload.ProductIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(priceLookupResponse{Prices: quotes})
	}
}
