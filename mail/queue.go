package mail

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/monitoring"
)

const sendTimeout = 30 * time.Second

// Queue sends emails in the background on a fixed pool of workers.
// Delivery is best effort: failures are logged and never retried.
type Queue struct {
	mailer Mailer
	log    *logrus.Logger
	jobs   chan Email
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewQueue(mailer Mailer, workers, size int, log *logrus.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	q := &Queue{
		mailer: mailer,
		log:    log,
		jobs:   make(chan Email, size),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue hands email to the workers without blocking. It reports false
// when the queue is full or closed and the email was dropped.
func (q *Queue) Enqueue(email Email) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.log.WithField("to", email.To).Warn("Mail queue closed, email dropped")
		monitoring.MailSent.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case q.jobs <- email:
		return true
	default:
		q.log.WithField("to", email.To).Warn("Mail queue full, email dropped")
		monitoring.MailSent.WithLabelValues("dropped").Inc()
		return false
	}
}

// Close stops accepting emails and waits for the queued ones to be sent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for email := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.mailer.Send(ctx, email)
		cancel()

		if err != nil {
			q.log.WithError(err).WithField("to", email.To).Error("Failed to send email")
			monitoring.MailSent.WithLabelValues("error").Inc()
			continue
		}
		monitoring.MailSent.WithLabelValues("ok").Inc()
	}
}
