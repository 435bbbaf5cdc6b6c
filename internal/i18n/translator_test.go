package i18n_test

import (
	"testing"

	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/stretchr/testify/assert"
)

func TestTranslator_Translate(t *testing.T) {
	tr := i18n.NewTranslator("en")

	tests := []struct {
		name string
		key  string
		lang string
		want string
	}{
		{
			name: "english",
			key:  "auth.invalid_credentials",
			lang: "en-US",
			want: "Invalid email or password.",
		},
		{
			name: "serbian from accept-language",
			key:  "auth.invalid_credentials",
			lang: "sr-Latn-RS,sr;q=0.9,en;q=0.8",
			want: "Pogrešan email ili lozinka.",
		},
		{
			name: "unsupported language falls back",
			key:  "auth.invalid_credentials",
			lang: "ja",
			want: "Invalid email or password.",
		},
		{
			name: "malformed header falls back",
			key:  "auth.invalid_credentials",
			lang: ";;;",
			want: "Invalid email or password.",
		},
		{
			name: "unknown key",
			key:  "no.such.key",
			lang: "en",
			want: "no.such.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Translate(tt.key, tt.lang))
		})
	}
}

func TestTranslator_DefaultLanguage(t *testing.T) {
	tr := i18n.NewTranslator("sr")

	assert.Equal(t, "sr", tr.Match(""))
	assert.Equal(t, "sr", tr.Match("ja"))
	assert.Equal(t, "en", tr.Match("en-GB"))
	assert.Equal(t, "Pogrešan email ili lozinka.", tr.Translate("auth.invalid_credentials", ""))
}
