package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxEmailLength   = 254
	maxBodyBytes     = 1 << 16
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is a CredentialsRequest that passed validation.
type Credentials struct {
	Email    string
	Password string
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.BadRequest("validation.invalid_body")
	}
	return nil
}

// validateSignup applies the full password policy.
func validateSignup(req CredentialsRequest) (Credentials, error) {
	creds, err := validateCredentials(req)
	if err != nil {
		return Credentials{}, err
	}
	if len([]rune(creds.Password)) < minPasswordLength {
		return Credentials{}, domain.BadRequest("validation.password_too_short")
	}
	return creds, nil
}

// validateLogin only checks presence and shape; the password policy may
// have changed since the account was created.
func validateLogin(req CredentialsRequest) (Credentials, error) {
	return validateCredentials(req)
}

func validateCredentials(req CredentialsRequest) (Credentials, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return Credentials{}, domain.BadRequest("validation.email_required")
	}
	if len(email) > maxEmailLength {
		return Credentials{}, domain.BadRequest("validation.email_invalid")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Credentials{}, domain.BadRequest("validation.email_invalid")
	}

	if req.Password == "" {
		return Credentials{}, domain.BadRequest("validation.password_required")
	}
	if len(req.Password) > maxPasswordBytes {
		return Credentials{}, domain.BadRequest("validation.password_too_long")
	}

	return Credentials{Email: strings.ToLower(email), Password: req.Password}, nil
}

func validateActivationSecret(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", domain.BadRequest("validation.activation_required")
	}
	return secret, nil
}
