package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/auth"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User agents of two distinct devices.
const (
	ChromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	FirefoxLinuxUA  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email     string
	password  string
	activated bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Activated creates the user without a pending activation secret
func (b *UserBuilder) Activated() *UserBuilder {
	b.activated = true
	return b
}

// Build stores the user through repo and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(b.password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if !b.activated {
		secret := uuid.NewString()
		user.ActivationSecret = &secret
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	JWT struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	} `json:"jwt"`
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Activated bool   `json:"activated"`
	} `json:"user"`
}

// BuildAndAuthenticate signs the user up through the API from userAgent
// and returns the user id and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer, userAgent string) (uuid.UUID, string) {
	t.Helper()

	resp := DoRequest(t, http.MethodPost, ts.APIURL("/auth/signup"), map[string]string{
		"email":    b.email,
		"password": b.password,
	}, "", userAgent)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, err := uuid.Parse(authResp.User.ID)
	if err != nil {
		t.Fatalf("invalid user id %q: %v", authResp.User.ID, err)
	}
	return userID, authResp.JWT.Token
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// DoRequest sends a JSON request as the device identified by userAgent.
func DoRequest(t *testing.T, method, url string, body interface{}, token, userAgent string) *http.Response {
	t.Helper()

	req := CreateAuthenticatedRequest(t, method, url, body, token)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}
