package middlewarex

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"gem_market/pkg/errcodes"
	"gem_market/pkg/httpx/reply"
	"gem_market/pkg/logx"
)

// Recovery перехватывает панику обработчика и отвечает 500 в общем формате ошибок.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				reply.Coded(ctx, w, http.StatusInternalServerError, errcodes.InternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
