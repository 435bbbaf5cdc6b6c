package middleware

import (
	"context"
	"net/http"

	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
)

// Language resolves Accept-Language to a supported language and stores it
// in the request context.
func Language(tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := tr.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), LanguageKey, lang)))
		})
	}
}

// GetLanguage returns the request language, or "" to let the translator
// use its default.
func GetLanguage(ctx context.Context) string {
	lang, _ := ctx.Value(LanguageKey).(string)
	return lang
}
