package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"khidmaBack/internal/handlers"
	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// negotiateLanguage stores the response language in the request context.
func negotiateLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Negotiate(r)
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// observe logs the request and records it under the route pattern.
func (app *application) observe(route string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)
			app.metrics.ObserveRequest(route, r.Method, rec.status, elapsed)
			app.logger.WithFields(logrus.Fields{
				"component": "http",
				"method":    r.Method,
				"uri":       r.URL.RequestURI(),
				"status":    rec.status,
				"duration":  elapsed.String(),
				"remote":    r.RemoteAddr,
			}).Info("request")
		})
	}
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.logger.WithField("component", "http").Errorf("panic %s %s: %v", r.Method, r.URL.RequestURI(), err)
				writeError(w, r, http.StatusInternalServerError, "error.internal")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, key string) {
	msg := i18n.T(i18n.FromContext(r.Context()), key)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%q}\n", msg)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// JWTMiddleware authenticates the bearer token and checks the role. Admins
// satisfy every role; an empty role accepts any signed in user.
func (app *application) JWTMiddleware(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		actor, err := app.userService.Authenticate(r.Context(), token)
		switch {
		case errors.Is(err, models.ErrUserBlocked):
			writeError(w, r, http.StatusForbidden, "error.blocked")
			return
		case err != nil:
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		if requiredRole != "" && actor.Role != requiredRole && !actor.IsAdmin() {
			writeError(w, r, http.StatusForbidden, "error.forbidden")
			return
		}
		next.ServeHTTP(w, r.WithContext(handlers.WithActor(r.Context(), actor)))
	})
}

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

// optionalAuth attaches the caller when a valid token is sent and otherwise
// serves the request anonymously.
func (app *application) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if actor, err := app.userService.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(handlers.WithActor(r.Context(), actor))
			}
		}
		next.ServeHTTP(w, r)
	})
}
