package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danevairena/Bookstore/cache"
	"github.com/danevairena/Bookstore/config"
	"github.com/danevairena/Bookstore/database"
	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/handlers"
	"github.com/danevairena/Bookstore/logger"
	"github.com/danevairena/Bookstore/mail"
	"github.com/danevairena/Bookstore/routes"
)

const (
	testSecret  = "test-secret"
	testBaseURL = "http://bookstore.test"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Email
}

func (m *recordingMailer) Send(_ context.Context, email mail.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) Sent() []mail.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Email(nil), m.sent...)
}

type testServer struct {
	app     *handlers.App
	handler http.Handler
	mailer  *recordingMailer
}

// newTestServer builds the full router on top of a fresh sqlite database.
func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := &config.Config{
		BaseURL:        testBaseURL,
		DBDriver:       config.DriverSQLite,
		DBPath:         filepath.Join(t.TempDir(), "test.db"),
		SecretKey:      testSecret,
		PostsPerPage:   25,
		UsersPerPage:   10,
		TokenTTL:       time.Hour,
		ResetTokenTTL:  10 * time.Minute,
		MailSender:     "admin@bookstore.test",
		MailWorkers:    1,
		MailQueueSize:  10,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := logger.Discard()
	db, err := database.Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	mailer := &recordingMailer{}
	queue := mail.NewQueue(mailer, cfg.MailWorkers, cfg.MailQueueSize, log)
	t.Cleanup(func() {
		queue.Close()
		db.Close()
	})

	app := handlers.NewApp(cfg, log, db, cache.New(cfg, log), queue)
	return &testServer{app: app, handler: routes.SetupRoutes(app), mailer: mailer}
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(cookie *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func withBasicAuth(username, password string) requestOption {
	return func(r *http.Request) { r.SetBasicAuth(username, password) }
}

// performRequest sends a request with an optional JSON body through the router
func (s *testServer) performRequest(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) registerUser(t *testing.T, username, password string) dto.UserDTO {
	t.Helper()
	resp := s.performRequest(t, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var user dto.UserDTO
	decode(t, resp, &user)
	return user
}

func (s *testServer) getToken(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.performRequest(t, http.MethodPost, "/tokens", nil, withBasicAuth(username, password))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var token dto.TokenDTO
	decode(t, resp, &token)
	return token.Token
}

// signUp registers a user and returns a bearer token for them
func (s *testServer) signUp(t *testing.T, username string) (dto.UserDTO, string) {
	t.Helper()
	user := s.registerUser(t, username, "password123")
	return user, s.getToken(t, username, "password123")
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), resp.Body.String())
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "session-cookie" {
			return cookie
		}
	}
	return nil
}

func titles(page dto.PageDTO[dto.PostDTO]) []string {
	out := make([]string, len(page.Items))
	for i, p := range page.Items {
		out[i] = p.Title
	}
	return out
}
