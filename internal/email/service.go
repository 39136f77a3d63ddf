// Package email delivers the password reset notifications. It is a
// collaborator of the security core, not part of it: template details
// and delivery failures never affect the reset state machine.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"oversave/internal/config"
	"sync"
)

// EmailSender defines the interface for sending emails
type EmailSender interface {
	SendPasswordResetEmail(to, firstName, token string) error
	SendPasswordChangedEmail(to, firstName string) error
}

// Service implements the EmailSender interface over a pooled SMTP connection
type Service struct {
	config config.EmailConfig
	client *smtp.Client
	mu     sync.Mutex
}

// NewService creates a new email service
func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		config: cfg,
		client: nil,
	}
}

// dialSMTP establishes an SMTP connection, reusing a live one when possible
func (s *Service) dialSMTP() (*smtp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Noop(); err == nil {
			return s.client, nil
		}
		s.client.Close()
		s.client = nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	if err := client.Auth(smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to authenticate with SMTP server: %w", err)
	}

	s.client = client
	return client, nil
}

// sendMail sends an email using the pooled SMTP connection
func (s *Service) sendMail(to []string, msg []byte) error {
	client, err := s.dialSMTP()
	if err != nil {
		return err
	}

	if err := client.Mail(s.config.SMTPUsername); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", addr, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create message writer: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message writer: %w", err)
	}

	return nil
}

// Close closes the SMTP connection
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		err := s.client.Quit()
		s.client = nil
		return err
	}
	return nil
}

func (s *Service) checkConfig() error {
	if s.config.SMTPHost == "" || s.config.SMTPPort == 0 || s.config.SMTPUsername == "" ||
		s.config.SMTPPassword == "" || s.config.FromAddress == "" || s.config.AppURL == "" {
		return fmt.Errorf("incomplete email configuration")
	}
	return nil
}

func (s *Service) compose(to, subject string, tmpl *template.Template, data interface{}) ([]byte, error) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", to, s.config.FromAddress, subject, body.String())

	return []byte(msg), nil
}

var resetTemplate = template.Must(template.New("reset").Parse(`
	<h2>Hello {{.FirstName}},</h2>
	<p>We received a request to reset your OverSave password. Click the link below to choose a new one:</p>
	<p><a href="{{.URL}}">Reset Password</a></p>
	<p>This link will expire in 15 minutes and can be used only once.</p>
	<p>If you did not request a reset, no further action is required.</p>
`))

var changedTemplate = template.Must(template.New("changed").Parse(`
	<h2>Hello {{.FirstName}},</h2>
	<p>Your OverSave password was just changed and all of your sessions were signed out.</p>
	<p>If this was not you, please request a password reset immediately.</p>
`))

// SendPasswordResetEmail sends the reset link for a freshly issued token
func (s *Service) SendPasswordResetEmail(to, firstName, token string) error {
	if err := s.checkConfig(); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.AppURL, token)
	msg, err := s.compose(to, "Reset Your OverSave Password", resetTemplate, map[string]string{
		"FirstName": firstName,
		"URL":       resetURL,
	})
	if err != nil {
		return err
	}

	log.Printf("Sending password reset email to %s via SMTP server %s:%d", to, s.config.SMTPHost, s.config.SMTPPort)
	if err := s.sendMail([]string{to}, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// SendPasswordChangedEmail confirms a completed reset
func (s *Service) SendPasswordChangedEmail(to, firstName string) error {
	if err := s.checkConfig(); err != nil {
		return err
	}

	msg, err := s.compose(to, "Your OverSave Password Was Changed", changedTemplate, map[string]string{
		"FirstName": firstName,
	})
	if err != nil {
		return err
	}

	if err := s.sendMail([]string{to}, msg); err != nil {
		return fmt.Errorf("failed to send password changed email: %w", err)
	}
	return nil
}
