package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful register attempts",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total listings successfully posted",
	})

	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Total private messages sent",
	})

	Follows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follows_total",
		Help: "Total follow and unfollow actions",
	}, []string{"action"})

	PasswordResetRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "password_reset_requests_total",
		Help: "Total password reset requests",
	})

	MailSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_sent_total",
		Help: "Outgoing emails by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(MessagesSent)
	prometheus.MustRegister(Follows)
	prometheus.MustRegister(PasswordResetRequests)
	prometheus.MustRegister(MailSent)
}

// StatusRecordingWriter remembers the status code written by a handler
type StatusRecordingWriter struct {
	http.ResponseWriter
	StatusCode int
}

func NewStatusRecordingWriter(w http.ResponseWriter) *StatusRecordingWriter {
	if rw, ok := w.(*StatusRecordingWriter); ok {
		return rw
	}
	return &StatusRecordingWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rw *StatusRecordingWriter) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler records request timing and status code. The route label
// is the mux path template so ids and usernames don't blow up cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := NewStatusRecordingWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.StatusCode)

		RequestDuration.WithLabelValues(r.Method, routeName(r), status).Observe(duration)
	})
}

func routeName(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	if tmpl, err := route.GetPathTemplate(); err == nil {
		return tmpl
	}
	return "unmatched"
}
