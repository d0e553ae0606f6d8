package i18n

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestNegotiate(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{name: "default arabic", url: "/", want: Arabic},
		{name: "english header", url: "/", header: "en-US,en;q=0.9", want: English},
		{name: "arabic header", url: "/", header: "ar-SA,ar;q=0.9,en;q=0.5", want: Arabic},
		{name: "query wins", url: "/?lang=en", header: "ar", want: English},
		{name: "unsupported falls back", url: "/", header: "fr-FR", want: Arabic},
		{name: "several unsupported fall back", url: "/", header: "de-DE,fr;q=0.5", want: Arabic},
		{name: "english after unsupported", url: "/", header: "fr-FR,en;q=0.5", want: English},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			if tc.header != "" {
				r.Header.Set("Accept-Language", tc.header)
			}
			if got := Negotiate(r); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(English, "error.not_found"); got != "Resource not found" {
		t.Fatalf("unexpected english message %q", got)
	}
	if got := T("fr", "error.not_found"); got != catalog[Arabic]["error.not_found"] {
		t.Fatalf("expected arabic fallback, got %q", got)
	}
	if got := T(English, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := T(English, "field.min_len", "120"); got != "Must be at least 120 characters long" {
		t.Fatalf("unexpected formatted message %q", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range catalog[Arabic] {
		if _, ok := catalog[English][key]; !ok {
			t.Errorf("english catalog misses %s", key)
		}
	}
	for key := range catalog[English] {
		if _, ok := catalog[Arabic][key]; !ok {
			t.Errorf("arabic catalog misses %s", key)
		}
	}
}

func TestContextLanguage(t *testing.T) {
	if got := FromContext(context.Background()); got != Arabic {
		t.Fatalf("expected arabic default, got %s", got)
	}
	ctx := WithLang(context.Background(), English)
	if got := FromContext(ctx); got != English {
		t.Fatalf("expected english, got %s", got)
	}
}

func TestMoneyEnglish(t *testing.T) {
	if got := Money(English, 15000, "SAR"); got != "150.00 SAR" {
		t.Fatalf("Money = %q", got)
	}
}
