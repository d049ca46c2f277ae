package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error
}

type smtpSender struct {
	cfg config.SMTPConfig
	log logger.Logger
	d   *gomail.Dialer
}

func NewSMTPSender(cfg config.SMTPConfig, log logger.Logger) (Sender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	serverName := cfg.ServerName
	if serverName == "" {
		serverName = cfg.Host
	}
	tlsConfig := &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}

	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = tlsConfig
	case "tls", "starttls":
		dialer.TLSConfig = tlsConfig
	}

	return &smtpSender{cfg: cfg, log: log, d: dialer}, nil
}

// Send delivers the message synchronously but respects ctx: the SMTP dial
// runs in its own goroutine so a cancelled checkout does not hang on a slow
// mail server.
func (s *smtpSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients provided")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SenderEmail)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)

	switch {
	case bodyHTML != "" && bodyText != "":
		m.SetBody("text/html", bodyHTML)
		m.AddAlternative("text/plain", bodyText)
	case bodyHTML != "":
		m.SetBody("text/html", bodyHTML)
	case bodyText != "":
		m.SetBody("text/plain", bodyText)
	default:
		return fmt.Errorf("email body must be provided")
	}

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("Email to %v (subject %q) cancelled: %v", to, subject, ctx.Err())
		return fmt.Errorf("email sending cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.log.Errorf("Failed to send email to %v, subject %q: %v", to, subject, err)
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.log.Infof("Email sent to %v, subject: %s", to, subject)
	return nil
}
