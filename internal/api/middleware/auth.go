package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dragomirurdov/AtrijumApi/internal/api/response"
	"github.com/dragomirurdov/AtrijumApi/internal/auth"
	"github.com/dragomirurdov/AtrijumApi/internal/device"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
)

type contextKey string

const (
	SessionKey       contextKey = "session"
	LanguageKey      contextKey = "language"
	sessionHolderKey contextKey = "sessionHolder"
)

// Session is the authenticated caller of a request.
type Session struct {
	User   *domain.User
	Claims *auth.Claims
	Token  string
	Device domain.DeviceFingerprint
}

// Auth authenticates the Bearer token of the request against the stored
// sessions and puts the resulting Session in the context.
func Auth(authService *service.AuthService, tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := GetLanguage(r.Context())

			token, ok := BearerToken(r)
			if !ok {
				slog.WarnContext(r.Context(), "missing or malformed authorization header", "path", r.URL.Path)
				response.Error(w, tr, lang, domain.ErrMissingToken)
				return
			}

			fp := device.Fingerprint(r.UserAgent())
			res, err := authService.Authenticate(r.Context(), service.BearerCredential{Token: token}, fp)
			if err != nil {
				slog.WarnContext(r.Context(), "token authentication failed", "path", r.URL.Path, "error", err)
				response.Error(w, tr, lang, err)
				return
			}

			session := &Session{
				User:   res.User,
				Claims: res.Claims,
				Token:  token,
				Device: fp,
			}
			if h, ok := r.Context().Value(sessionHolderKey).(*sessionHolder); ok {
				h.session = session
			}
			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// sessionHolder carries the session back up to outer middleware.
type sessionHolder struct {
	session *Session
}

func withSessionHolder(ctx context.Context, h *sessionHolder) context.Context {
	return context.WithValue(ctx, sessionHolderKey, h)
}

func GetSession(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(SessionKey).(*Session)
	return s, ok
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	s, ok := GetSession(ctx)
	if !ok {
		return nil, false
	}
	return s.User, true
}
