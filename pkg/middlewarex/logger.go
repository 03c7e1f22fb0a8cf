package middlewarex

import (
	"log/slog"
	"net/http"

	"gem_market/pkg/contextx"
	"gem_market/pkg/logx"
)

// Заголовки, которыми шлюз передаёт вызывающего пользователя.
const (
	headerNameUserID    = "X-User-Id"
	headerNameCompanyID = "X-Company-Id"
)

// Logger кладёт в контекст логгер с полями запроса и вызывающего.
// Заголовки вызывающего только логируются, проверяет их сервер.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID, err := contextx.TraceIDFromContext(ctx)
		if err != nil {
			logger(ctx).Error("contextx.TraceIDFromContext", logx.Error(err))
		}

		attrs := []any{
			logx.Stringer(logx.FieldTraceID, traceID),
			logx.Stringer(logx.FieldURL, r.URL),
			slog.String(logx.FieldHTTPMethod, r.Method),
			slog.String(logx.FieldIP, r.RemoteAddr),
		}

		if userID := r.Header.Get(headerNameUserID); userID != "" {
			attrs = append(attrs, slog.String(logx.FieldUserID, userID))
		}
		if companyID := r.Header.Get(headerNameCompanyID); companyID != "" {
			attrs = append(attrs, slog.String(logx.FieldCompanyID, companyID))
		}

		ctx = contextx.WithLogger(ctx, logger(ctx).With(attrs...))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
