package middleware

import (
	"fmt"
	"net/http"

	"github.com/uaepulse/pulse-backend/api/responses"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/logger"
)

// Recoverer converts a handler panic into the standard INTERNAL_ERROR
// envelope so a malformed upload can never take the process down mid-run.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{
							"panic":  rec,
							"method": r.Method,
							"path":   r.URL.Path,
						})
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
