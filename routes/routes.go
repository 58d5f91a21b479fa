package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danevairena/Bookstore/handlers"
	"github.com/danevairena/Bookstore/monitoring"
)

// SetupRoutes initializes all the application routes
// The routing logic is isolated here
func SetupRoutes(app *handlers.App) http.Handler {
	authHandler := handlers.NewAuthHandler(app)
	tokenHandler := handlers.NewTokenHandler(app)
	userHandler := handlers.NewUserHandler(app)
	postHandler := handlers.NewPostHandler(app)
	messageHandler := handlers.NewMessageHandler(app)
	notificationHandler := handlers.NewNotificationHandler(app)
	systemHandler := handlers.NewSystemHandler(app)

	router := mux.NewRouter()
	router.NotFoundHandler = app.RequestID(app.LogRequests(http.HandlerFunc(handlers.NotFound)))
	router.MethodNotAllowedHandler = app.RequestID(app.LogRequests(http.HandlerFunc(handlers.MethodNotAllowed)))
	router.Use(app.RequestID, app.LogRequests, monitoring.InstrumentHandler, app.Identify)

	limit := app.Limiter.Limit
	auth := handlers.RequireAuth

	// Auth routes
	router.HandleFunc("/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/login", limit(authHandler.Login)).Methods("POST")
	router.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	router.HandleFunc("/reset_password_request", limit(authHandler.ResetPasswordRequest)).Methods("POST")
	router.HandleFunc("/reset_password/{token}", authHandler.ResetPassword).Methods("POST")

	// Token routes
	router.HandleFunc("/tokens", limit(tokenHandler.Issue)).Methods("POST")
	router.HandleFunc("/tokens", auth(tokenHandler.Revoke)).Methods("DELETE")

	// User routes
	router.HandleFunc("/users", userHandler.List).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", userHandler.Get).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", auth(userHandler.Update)).Methods("PUT")
	router.HandleFunc("/users/{id:[0-9]+}/followers", userHandler.Followers).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/followed", userHandler.Followed).Methods("GET")
	router.HandleFunc("/users/{username}/posts", auth(postHandler.ByUser)).Methods("GET")
	router.HandleFunc("/follow/{username}", auth(userHandler.Follow)).Methods("POST")
	router.HandleFunc("/unfollow/{username}", auth(userHandler.Unfollow)).Methods("POST")

	// Post routes
	router.HandleFunc("/posts", auth(postHandler.Create)).Methods("POST")
	router.HandleFunc("/", auth(postHandler.Index)).Methods("GET")
	router.HandleFunc("/index", auth(postHandler.Index)).Methods("GET")
	router.HandleFunc("/explore", auth(postHandler.Explore)).Methods("GET")

	// Message routes
	router.HandleFunc("/send_message/{username}", auth(messageHandler.Send)).Methods("POST")
	router.HandleFunc("/messages", auth(messageHandler.List)).Methods("GET")
	router.HandleFunc("/notifications", auth(notificationHandler.List)).Methods("GET")

	// System routes
	router.HandleFunc("/health", systemHandler.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
