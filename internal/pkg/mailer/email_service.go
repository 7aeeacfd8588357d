package mailer

import (
	"fmt"
	"time"

	"ai-fitcoach-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSubscriptionActivated(toEmail, planName string, periodEnd time.Time) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
	logger      logger.ILogger
}

// NewEmailService returns a no-op sender when host is empty so local setups need no SMTP server.
func NewEmailService(host string, port int, username, password, senderName, clientURL string, log logger.ILogger) IEmailService {
	if host == "" {
		return &noopEmailService{logger: log}
	}
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		clientURL:   clientURL,
		logger:      log,
	}
}

func (s *emailService) SendSubscriptionActivated(toEmail, planName string, periodEnd time.Time) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your %s plan is active", planName))
	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to %s!</h2>
			<p>Your coach is ready with your new daily message allowance.</p>
			<p>Your plan renews on <strong>%s</strong>.</p>
			<p><a href="%s">Start training</a></p>
		</div>
	`, planName, periodEnd.Format("2 January 2006"), s.clientURL))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "failed to send activation email", map[string]interface{}{"to": toEmail, "error": err.Error()})
		return err
	}
	s.logger.Info("MAILER", "activation email sent", map[string]interface{}{"to": toEmail})
	return nil
}

type noopEmailService struct {
	logger logger.ILogger
}

func (s *noopEmailService) SendSubscriptionActivated(toEmail, planName string, _ time.Time) error {
	s.logger.Debug("MAILER", "smtp not configured, skipping email", map[string]interface{}{"to": toEmail, "plan": planName})
	return nil
}
