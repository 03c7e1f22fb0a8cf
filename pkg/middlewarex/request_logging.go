package middlewarex

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	"gem_market/pkg/logx"
)

func RequestLogging(
	sensitiveDataMasker logx.SensitiveDataMaskerInterface,
	logFieldMaxLen int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			dump, err := httputil.DumpRequest(r, textBody(r.Header.Get("Content-Type")))

			if len(dump) > logFieldMaxLen {
				dump = dump[:logFieldMaxLen]
			}

			logger(ctx).Info(
				logx.FieldHTTPRequest,
				slog.String(logx.FieldRequestBody, string(sensitiveDataMasker.Mask(dump))),
				slog.Int64("content-length", r.ContentLength),
				logx.Error(err),
			)

			next.ServeHTTP(w, r)
		})
	}
}

// textBody тело без файлов и бинарных данных можно писать в лог.
func textBody(contentType string) bool {
	for _, prefix := range []string{"multipart/", "application/octet-stream", "image/"} {
		if strings.HasPrefix(contentType, prefix) {
			return false
		}
	}

	return true
}
