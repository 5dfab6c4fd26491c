package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/cartvault/api/responses"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
)

const sessionHeader = "X-Cart-Session"

type sessionCtxKey struct{}

// SessionContext requires the cart session header and threads the session id
// through the request context. Sessions are opaque ids minted by the caller;
// there is no authentication protocol behind them.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionHeader))
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "missing "+sessionHeader+" header"))
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session id placed by SessionContext.
func SessionIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return value
	}
	return ""
}
