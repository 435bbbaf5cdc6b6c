package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dragomirurdov/AtrijumApi/internal/api/response"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
)

// Recovery turns a panic into a localized 500 response.
func Recovery(tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slog.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					lang := GetLanguage(r.Context())
					response.Message(w, http.StatusInternalServerError, "errors.internal", tr.Translate("errors.internal", lang))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
