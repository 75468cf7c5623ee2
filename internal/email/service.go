package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/clinichq/clinic-api/internal/config"
)

type Service interface {
	SendPasswordReset(to, token string) error
	SendWelcome(to, name string) error
}

type smtpService struct {
	cfg     config.SMTPConfig
	baseURL string
}

func NewService(cfg config.SMTPConfig, baseURL string) Service {
	return &smtpService{cfg: cfg, baseURL: baseURL}
}

func (s *smtpService) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset link: %s/reset-password?token=%s\n\nThe link expires in one hour.",
		s.baseURL, token,
	)
	return s.send(to, "Password reset", body)
}

func (s *smtpService) SendWelcome(to, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nYour clinic staff account has been created. You can sign in at %s.", name, s.baseURL)
	return s.send(to, "Welcome to the clinic", body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
