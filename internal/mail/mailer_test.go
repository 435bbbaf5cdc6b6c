package mail_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/mail"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfirmation(t *testing.T) {
	tr := i18n.NewTranslator("en")
	secret := "abc-123"
	user := &domain.User{ID: uuid.New(), Email: "a@x.com", ActivationSecret: &secret}

	tests := []struct {
		name        string
		lang        string
		wantSubject string
	}{
		{name: "english", lang: "en", wantSubject: "Confirm your Atrijum account"},
		{name: "serbian", lang: "sr", wantSubject: "Potvrdite svoj Atrijum nalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := mail.RenderConfirmation(tr, "https://atrijum.rs/activate/", user, tt.lang)
			require.NoError(t, err)

			assert.Equal(t, "a@x.com", c.To)
			assert.Equal(t, tt.wantSubject, c.Subject)
			assert.Equal(t, "https://atrijum.rs/activate/abc-123", c.Link)
			assert.Contains(t, c.Body, c.Link)
		})
	}
}

func TestRenderConfirmation_Activated(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "a@x.com"}

	_, err := mail.RenderConfirmation(i18n.NewTranslator("en"), "https://atrijum.rs/activate", user, "en")
	assert.ErrorIs(t, err, mail.ErrAlreadyActivated)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := mail.NewLogMailer(logger, i18n.NewTranslator("en"), "http://localhost/activate")

	secret := "s1"
	err := m.SendUserConfirmation(context.Background(), &domain.User{Email: "b@x.com", ActivationSecret: &secret}, "en")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "to=b@x.com")
	assert.Contains(t, buf.String(), "http://localhost/activate/s1")
}
