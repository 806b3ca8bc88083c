package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID tags every request with a trace id. A caller supplied id is kept only when it
// parses as a UUID, so arbitrary header content never reaches the logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		if id, err := uuid.Parse(r.Header.Get(TraceHeader)); err == nil {
			traceID = id.String()
		}

		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
