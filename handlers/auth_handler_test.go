package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danevairena/Bookstore/config"
	"github.com/danevairena/Bookstore/dto"
)

func TestRegisterUser(t *testing.T) {
	s := newTestServer(t)

	user := s.registerUser(t, "user123", "password123")
	assert.Equal(t, "user123", user.Username)
	assert.Equal(t, "user123@example.com", user.Email)

	// Duplicate username
	resp := s.performRequest(t, http.MethodPost, "/register", map[string]string{
		"username": "user123", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "please use a different username")

	// Duplicate email
	resp = s.performRequest(t, http.MethodPost, "/register", map[string]string{
		"username": "user456", "email": "user123@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "please use a different email address")

	// Empty username
	resp = s.performRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "user2@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "username is required")

	// Invalid email
	resp = s.performRequest(t, http.MethodPost, "/register", map[string]string{
		"username": "user_invalid_email", "email": "invalid-email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "email must be a valid email address")

	var errBody dto.ErrorDTO
	decode(t, resp, &errBody)
	assert.Equal(t, "Bad Request", errBody.Error)
}

func TestLoginUserSession(t *testing.T) {
	s := newTestServer(t)
	registered := s.registerUser(t, "testuser", "password123")

	resp := s.performRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "testuser", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Nil(t, sessionCookie(resp))

	resp = s.performRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "testuser", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "session cookie not set")

	// The cookie carries the user id, signed with the secret key
	sessionData := make(map[interface{}]interface{})
	codec := securecookie.New([]byte(testSecret), nil)
	require.NoError(t, codec.Decode("session-cookie", cookie.Value, &sessionData))
	assert.Equal(t, registered.ID, sessionData["user_id"])

	resp = s.performRequest(t, http.MethodGet, "/index", nil, withCookie(cookie))
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.performRequest(t, http.MethodPost, "/logout", nil, withCookie(cookie))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)

	resp = s.performRequest(t, http.MethodGet, "/index", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestForgedSessionIsAnonymous(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "victim", "password123")

	forged, err := securecookie.EncodeMulti("session-cookie",
		map[interface{}]interface{}{"user_id": uint(1)},
		securecookie.New([]byte("wrong-key"), nil))
	require.NoError(t, err)

	resp := s.performRequest(t, http.MethodGet, "/index", nil,
		withCookie(&http.Cookie{Name: "session-cookie", Value: forged}))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPasswordReset(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "susan", "oldpassword")

	// Unknown addresses get the same answer and no email
	resp := s.performRequest(t, http.MethodPost, "/reset_password_request", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/reset_password_request", map[string]string{"email": "susan@example.com"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Check your email")

	s.app.Mail.Close()
	sent := s.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "susan@example.com", sent[0].To)
	assert.Equal(t, "[Bookstore] Reset Your Password", sent[0].Subject)

	_, after, found := strings.Cut(sent[0].Text, "/reset_password/")
	require.True(t, found)
	token := strings.Fields(after)[0]

	resp = s.performRequest(t, http.MethodPost, "/reset_password/not-a-token", map[string]string{
		"password": "newpassword", "password2": "newpassword",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/reset_password/"+token, map[string]string{
		"password": "newpassword", "password2": "different",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/reset_password/"+token, map[string]string{
		"password": "newpassword", "password2": "newpassword",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.performRequest(t, http.MethodPost, "/login", map[string]string{"username": "susan", "password": "oldpassword"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = s.performRequest(t, http.MethodPost, "/login", map[string]string{"username": "susan", "password": "newpassword"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestResetLinkUsesConfiguredBaseURL(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "victim", "password123")

	resp := s.performRequest(t, http.MethodPost, "/reset_password_request",
		map[string]string{"email": "victim@example.com"},
		func(r *http.Request) {
			r.Host = "evil.example"
			r.Header.Set("X-Forwarded-Proto", "https")
			r.Header.Set("X-Forwarded-Host", "evil.example")
		})
	require.Equal(t, http.StatusOK, resp.Code)

	s.app.Mail.Close()
	sent := s.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, testBaseURL+"/reset_password/")
	assert.Contains(t, sent[0].HTML, `href="`+testBaseURL+`/reset_password/`)
	assert.NotContains(t, sent[0].Text, "evil.example")
	assert.NotContains(t, sent[0].HTML, "evil.example")
}

func TestSessionCookieSecureFlag(t *testing.T) {
	login := func(s *testServer) *http.Cookie {
		s.registerUser(t, "susan", "password123")
		resp := s.performRequest(t, http.MethodPost, "/login", map[string]string{
			"username": "susan", "password": "password123",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)
		return cookie
	}

	plain := login(newTestServer(t))
	assert.False(t, plain.Secure)
	assert.True(t, plain.HttpOnly)

	secure := login(newTestServer(t, func(cfg *config.Config) { cfg.SessionSecure = true }))
	assert.True(t, secure.Secure)
}

func TestResetRequestIsRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
	})

	body := map[string]string{"email": "someone@example.com"}
	resp := s.performRequest(t, http.MethodPost, "/reset_password_request", body)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/reset_password_request", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	// A made-up forwarding header does not buy a fresh budget
	resp = s.performRequest(t, http.MethodPost, "/reset_password_request", body, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.99")
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}
