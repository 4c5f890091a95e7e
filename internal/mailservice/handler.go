package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mirabelledev/inkwell/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender, owner string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(host, port, username, password, sender, NewTemplate()),
		owner:  owner,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SendContactNotifications consumes contact form submissions from the broker
// and emails each one to the site owner.
func (s *MailService) SendContactNotifications() {
	msgs, err := s.mb.Consume(common.ContactSubmittedKey, common.ContactExchange, common.ContactSubmittedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data ContactMessage

				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				// using exponential backoff with jitter
				const maxRetries = 5
				const baseDelay = 500 * time.Millisecond

				var attempt int
				for attempt = 0; attempt < maxRetries; attempt++ {
					err = s.m.send(s.owner, data, "contact_email.html")
					if err == nil {
						s.logger.Info("contact notification sent", slog.String("from", data.Email))
						msg.Ack(false)
						break
					}

					delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
					s.logger.Info("delaying contact notification", slog.String("from", data.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))
					time.Sleep(delay)
				}

				if attempt == maxRetries {
					s.logger.Error("could not send contact notification", slog.String("from", data.Email))
					msg.Ack(false)
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping SendContactNotifications due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) Close() {
	s.cancel()
}
