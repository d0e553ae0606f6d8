// Package i18n holds the Arabic and English message catalog and language negotiation.
package i18n

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

const (
	Arabic  = "ar"
	English = "en"
)

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

type ctxKey struct{}

// Negotiate picks the response language from ?lang= or Accept-Language. Arabic wins ties.
func Negotiate(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang == Arabic || lang == English {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return Arabic
	}
	_, idx, conf := matcher.Match(tags...)
	if idx == 1 && conf >= language.High {
		return English
	}
	return Arabic
}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored by WithLang, Arabic by default.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return Arabic
}

// T translates a message key, falling back to Arabic and then to the key itself.
func T(lang, key string, args ...interface{}) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[Arabic][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
