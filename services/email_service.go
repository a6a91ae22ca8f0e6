package services

import (
	"fmt"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendContactNotification отправляет уведомление о новом обращении
// через форму обратной связи
func (s *EmailService) SendContactNotification(name, email, message string) error {
	to := s.config.SMTP.ContactTo
	if to == "" {
		to = s.config.SMTP.Username
	}

	subject := "NEW INQUIRY from " + name
	body := fmt.Sprintf(`
		<p>You have a new message from the contact form.</p>
		<hr>
		<strong>Name:</strong> %s<br>
		<strong>Email:</strong> %s<br>
		<strong>Message:</strong><br>
		<p style="white-space: pre-wrap;">%s</p>
		<hr>
		<p>Please respond directly to %s.</p>
	`, name, email, message, email)

	return s.SendEmail(to, subject, body)
}

// SendWithdrawalNotification отправляет уведомление о заявке на вывод
func (s *EmailService) SendWithdrawalNotification(to, referenceID string, amount float64) error {
	subject := "Withdrawal request received"
	body := fmt.Sprintf(`
		<h2>Withdrawal request</h2>
		<p>Reference: %s</p>
		<p>Amount: %.2f</p>
		<p>Date: %s</p>
		<p>The funds have been locked and the request is pending review.</p>
	`, referenceID, amount, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}
