package handlers

import (
	"errors"
	"net/http"

	"github.com/danevairena/Bookstore/auth"
	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/monitoring"
)

// TokenHandler hands out and revokes API tokens
type TokenHandler struct {
	app *App
}

func NewTokenHandler(app *App) *TokenHandler {
	return &TokenHandler{app: app}
}

// Issue exchanges HTTP basic credentials for a bearer token.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="bookstore"`)
		errorResponse(w, http.StatusUnauthorized, "basic authentication required")
		return
	}

	ctx := r.Context()
	user, err := auth.Authenticate(ctx, h.app.Users, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		w.Header().Set("WWW-Authenticate", `Basic realm="bookstore"`)
		errorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}

	token, err := h.app.Tokens.Issue(ctx, user, h.app.Config.TokenTTL)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	monitoring.LoginSuccess.Inc()
	writeJSON(w, http.StatusOK, dto.TokenDTO{Token: token})
}

func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Tokens.Revoke(r.Context(), CurrentUser(r)); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
