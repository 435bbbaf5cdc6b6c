// Package response writes JSON bodies and localized error responses.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {code, message}, the message translated to lang.
// Internal errors never leak their cause.
func Error(w http.ResponseWriter, tr *i18n.Translator, lang string, err error) {
	key := domain.KeyOf(err)
	if domain.KindOf(err) == domain.KindInternal {
		key = "errors.internal"
	}
	Message(w, StatusFor(domain.KindOf(err)), key, tr.Translate(key, lang))
}

func Message(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Code: code, Message: message})
}
