package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dragomirurdov/AtrijumApi/internal/api/response"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tr := i18n.NewTranslator("en")

	tests := []struct {
		name       string
		err        error
		lang       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "unauthorized",
			err:        domain.ErrInvalidCredentials,
			lang:       "en",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "auth.invalid_credentials",
			wantMsg:    "Invalid email or password.",
		},
		{
			name:       "localized",
			err:        domain.ErrEmailTaken,
			lang:       "sr",
			wantStatus: http.StatusConflict,
			wantCode:   "auth.email_taken",
			wantMsg:    "Nalog sa ovom email adresom već postoji.",
		},
		{
			name:       "not found",
			err:        domain.ErrUserNotFound,
			lang:       "en",
			wantStatus: http.StatusNotFound,
			wantCode:   "auth.user_not_found",
			wantMsg:    "No account exists for this email address.",
		},
		{
			name:       "bad request",
			err:        domain.BadRequest("validation.email_invalid"),
			lang:       "en",
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation.email_invalid",
			wantMsg:    "Email address is not valid.",
		},
		{
			name:       "internal hides cause",
			err:        domain.Internal(errors.New("pq: connection refused")),
			lang:       "en",
			wantStatus: http.StatusInternalServerError,
			wantCode:   "errors.internal",
			wantMsg:    "Something went wrong. Please try again later.",
		},
		{
			name:       "untyped error",
			err:        errors.New("boom"),
			lang:       "en",
			wantStatus: http.StatusInternalServerError,
			wantCode:   "errors.internal",
			wantMsg:    "Something went wrong. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.Error(rec, tr, tt.lang, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body response.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}
