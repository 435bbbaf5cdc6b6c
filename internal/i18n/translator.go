// Package i18n localizes user-facing messages.
package i18n

import (
	"golang.org/x/text/language"
)

// Translator looks up messages by key for the best matching supported
// language. Lookups never fail: an unknown language falls back to the
// default and an unknown key is returned as is.
type Translator struct {
	fallback string
	catalog  map[string]map[string]string
}

// NewTranslator builds a Translator over the built-in catalog. An
// unsupported defaultLang falls back to English.
func NewTranslator(defaultLang string) *Translator {
	t := &Translator{fallback: "en", catalog: catalog}
	t.fallback = t.match(defaultLang)
	return t
}

// Match resolves an Accept-Language header or bare tag to a supported
// language code.
func (t *Translator) Match(acceptLanguage string) string {
	return t.match(acceptLanguage)
}

// Languages are matched on their base subtag only; sr, sr-Latn and sr-RS
// all select the Serbian messages.
func (t *Translator) match(lang string) string {
	if lang == "" {
		return t.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(lang)
	if err != nil {
		return t.fallback
	}
	for _, tag := range prefs {
		base, confidence := tag.Base()
		if confidence == language.No {
			continue
		}
		if _, ok := t.catalog[base.String()]; ok {
			return base.String()
		}
	}
	return t.fallback
}

// Translate returns the message for key in lang.
func (t *Translator) Translate(key, lang string) string {
	if msg, ok := t.catalog[t.match(lang)][key]; ok {
		return msg
	}
	if msg, ok := t.catalog[t.fallback][key]; ok {
		return msg
	}
	if msg, ok := t.catalog["en"][key]; ok {
		return msg
	}
	return key
}
