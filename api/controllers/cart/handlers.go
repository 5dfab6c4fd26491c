package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cartvault/api/middleware"
	"github.com/angelmondragon/cartvault/api/responses"
	"github.com/angelmondragon/cartvault/api/validators"
	cartengine "github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/session"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

// Sessions resolves the engine bound to a session id.
type Sessions interface {
	Engine(ctx context.Context, sessionID string) (*session.Engine, error)
}

// Fetch returns the observable cart state for the session.
func Fetch(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, ready := engine.Snapshot()
		responses.WriteSuccess(w, newStateView(state, ready))
	}
}

// AddLine appends or merges a line into the session's cart.
func AddLine(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !payload.UnitPrice.IsPositive() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive"))
			return
		}

		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		state, err := engine.Dispatch(r.Context(), cartengine.AddLine{Line: cartengine.Line{
			ProductID:     payload.ProductID,
			Name:          payload.Name,
			UnitPrice:     payload.UnitPrice,
			Quantity:      quantity,
			Color:         payload.Color,
			Size:          payload.Size,
			PrintPosition: payload.PrintPosition,
			Image:         payload.Image,
			Slug:          payload.Slug,
			CategorySlug:  payload.CategorySlug,
		}})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStateView(state, true))
	}
}

// RemoveLine deletes a line by id; removing an absent line still succeeds.
func RemoveLine(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := engine.Dispatch(r.Context(), cartengine.RemoveLine{LineID: chi.URLParam(r, "lineId")})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStateView(state, true))
	}
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func SetQuantity(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := engine.Dispatch(r.Context(), cartengine.SetQuantity{
			LineID:   chi.URLParam(r, "lineId"),
			Quantity: payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStateView(state, true))
	}
}

// Clear empties the session's cart.
func Clear(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return dispatchAction(sessions, logg, cartengine.Clear{})
}

// ToggleOpen flips the drawer visibility flag.
func ToggleOpen(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return dispatchAction(sessions, logg, cartengine.ToggleOpen{})
}

// Close shuts the drawer.
func Close(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return dispatchAction(sessions, logg, cartengine.CloseDrawer{})
}

// CheckoutSnapshot hands the read-only view to the order-submission
// collaborator. Refused until the session's prices are verified.
func CheckoutSnapshot(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := engine.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(snapshot))
	}
}

func dispatchAction(sessions Sessions, logg *logger.Logger, action cartengine.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFromRequest(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := engine.Dispatch(r.Context(), action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStateView(state, true))
	}
}

func engineFromRequest(r *http.Request, sessions Sessions) (*session.Engine, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session context missing")
	}
	return sessions.Engine(r.Context(), sessionID)
}
