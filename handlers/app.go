package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/auth"
	"github.com/danevairena/Bookstore/cache"
	"github.com/danevairena/Bookstore/config"
	"github.com/danevairena/Bookstore/database"
	"github.com/danevairena/Bookstore/mail"
	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/repositories"
)

const (
	sessionName   = "session-cookie"
	sessionUserID = "user_id"
)

// App holds everything the HTTP handlers depend on.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *database.DB
	Cache  *cache.RedisCache
	Mail   *mail.Queue

	Users         *repositories.UserRepository
	Follows       *repositories.FollowRepository
	Posts         *repositories.PostRepository
	Messages      *repositories.MessageRepository
	Notifications *repositories.NotificationRepository

	Tokens   *auth.TokenService
	Reset    *auth.ResetSigner
	Sessions sessions.Store
	Limiter  *RateLimiter

	Now func() time.Time
}

// NewApp wires the repositories and services on top of an open database.
func NewApp(cfg *config.Config, log *logrus.Logger, db *database.DB, redis *cache.RedisCache, mailQueue *mail.Queue) *App {
	users := repositories.NewUserRepository(db.DB)

	store := sessions.NewCookieStore([]byte(cfg.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
		SameSite: http.SameSiteLaxMode,
	}

	return &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  redis,
		Mail:   mailQueue,

		Users:         users,
		Follows:       repositories.NewFollowRepository(db.DB),
		Posts:         repositories.NewPostRepository(db.DB),
		Messages:      repositories.NewMessageRepository(db.DB),
		Notifications: repositories.NewNotificationRepository(db.DB),

		Tokens:   auth.NewTokenService(users, redis, log),
		Reset:    auth.NewResetSigner(cfg.SecretKey, users, log),
		Sessions: store,
		Limiter:  NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy),

		Now: time.Now,
	}
}

type contextKey int

const (
	userKey contextKey = iota
	requestIDKey
	loggerKey
)

// CurrentUser returns the authenticated user of the request, if any
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, user))
}

// RequestID returns the id assigned to the request by the RequestID middleware
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func (a *App) logger(r *http.Request) *logrus.Entry {
	if entry, ok := r.Context().Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(a.Log)
}
