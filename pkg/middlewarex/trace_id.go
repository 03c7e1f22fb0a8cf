package middlewarex

import (
	"net/http"
	"regexp"

	"github.com/rs/xid"

	"gem_market/pkg/contextx"
)

const headerNameTraceID = "X-Trace-Id"

// Чужой trace id попадает в логи и ответы об ошибках, поэтому принимаем
// только короткие идентификаторы без управляющих символов.
var validTraceID = regexp.MustCompile(`^[0-9A-Za-z._-]{1,64}$`) //nolint:gochecknoglobals

func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(headerNameTraceID)

		if !validTraceID.MatchString(traceID) {
			traceID = xid.New().String()
		}

		ctx := contextx.WithTraceID(r.Context(), contextx.TraceID(traceID))

		w.Header().Set(headerNameTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
