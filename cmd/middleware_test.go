package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"khidmaBack/internal/i18n"
)

func TestNegotiateLanguageSetsContext(t *testing.T) {
	var got string
	h := negotiateLanguage(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got != i18n.English {
		t.Fatalf("expected en, got %q", got)
	}
	if rec.Header().Get("Content-Language") != i18n.English {
		t.Fatalf("expected Content-Language en, got %q", rec.Header().Get("Content-Language"))
	}
}

func TestRecoverPanicWritesLocalizedError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := &application{logger: logger}

	h := negotiateLanguage(app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest(http.MethodGet, "/orders?lang=en", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), i18n.T(i18n.English, "error.internal")) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearerToken(req) != "" {
		t.Fatalf("expected empty token")
	}
	req.Header.Set("Authorization", "Bearer abc.def")
	if got := bearerToken(req); got != "abc.def" {
		t.Fatalf("expected abc.def, got %q", got)
	}
	req.Header.Set("Authorization", "Basic xyz")
	if bearerToken(req) != "" {
		t.Fatalf("basic auth must not be accepted")
	}
}
