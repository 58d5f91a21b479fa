package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danevairena/Bookstore/auth"
	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/mail"
	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/monitoring"
	"github.com/danevairena/Bookstore/repositories"
)

// AuthHandler handles registration, browser login and password resets
type AuthHandler struct {
	app *App
}

func NewAuthHandler(app *App) *AuthHandler {
	return &AuthHandler{app: app}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	taken, err := h.app.Users.Exists(ctx, req.Username)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if taken {
		badRequest(w, "please use a different username")
		return
	}
	existing, err := h.app.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if existing != nil {
		badRequest(w, "please use a different email address")
		return
	}

	user := &models.User{Username: req.Username, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if err := h.app.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			badRequest(w, "please use a different username or email address")
			return
		}
		h.app.serverError(w, r, err)
		return
	}

	monitoring.RegisterSuccess.Inc()
	h.app.logger(r).WithField("user_id", user.ID).Info("User registered")
	w.Header().Set("Location", fmt.Sprintf("/users/%d", user.ID))
	writeJSON(w, http.StatusCreated, dto.NewUserDTO(user, dto.UserCounts{}, true))
}

// Login starts a cookie session for the browser.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		monitoring.LoginFailure.WithLabelValues("bad_request").Inc()
		badRequest(w, err.Error())
		return
	}

	user, err := auth.Authenticate(r.Context(), h.app.Users, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		errorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}

	session, _ := h.app.Sessions.Get(r, sessionName)
	session.Values[sessionUserID] = user.ID
	if req.RememberMe {
		session.Options.MaxAge = 30 * 24 * 60 * 60
	} else {
		session.Options.MaxAge = 0
	}
	if err := session.Save(r, w); err != nil {
		h.app.serverError(w, r, err)
		return
	}

	monitoring.LoginSuccess.Inc()
	counts, err := h.app.userCounts(r, user)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user, counts, true))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.app.Sessions.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const resetRequestedMessage = "Check your email for the instructions to reset your password"

// ResetPasswordRequest mails a reset link when the address belongs to a user.
// The answer is the same either way.
func (h *AuthHandler) ResetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	monitoring.PasswordResetRequests.Inc()

	user, err := h.app.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if user != nil {
		if err := h.sendResetEmail(user); err != nil {
			h.app.serverError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": resetRequestedMessage})
}

func (h *AuthHandler) sendResetEmail(user *models.User) error {
	token, err := h.app.Reset.Issue(user, h.app.Config.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset_password/%s", h.app.Config.BaseURL, token)
	email, err := mail.PasswordResetEmail(user, link, h.app.Config.MailSender)
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	h.app.Mail.Enqueue(email)
	return nil
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	user := h.app.Reset.Verify(r.Context(), mux.Vars(r)["token"])
	if user == nil {
		badRequest(w, "the reset link is invalid or has expired")
		return
	}

	var req dto.ResetPassword
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := user.SetPassword(req.Password); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if err := h.app.Users.Save(r.Context(), user); err != nil {
		h.app.serverError(w, r, err)
		return
	}

	h.app.logger(r).WithField("user_id", user.ID).Info("Password reset")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset."})
}
