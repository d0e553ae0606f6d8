package main

import (
	"errors"
	"net/http"

	"khidmaBack/internal/models"
)

// serveWS upgrades a signed in user to the live notification socket. Browsers
// cannot set headers on the upgrade request, so the token may also come in
// the "token" query parameter. Admin connections receive the admin feed.
func (app *application) serveWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
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
	app.hub.Serve(w, r, actor.UserID, actor.IsAdmin())
}
