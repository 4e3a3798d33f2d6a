package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uaepulse/pulse-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID echoes the caller-supplied request id or mints a UUID when the
// header is absent or blank. The id rides the response header and the
// logging context so a single upload-clean-simulate flow can be traced.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
