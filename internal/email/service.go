package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/eventloka/server/internal/config"
	"github.com/eventloka/server/internal/metrics"
)

// Service renders HTML email templates and delivers them through Resend.
type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

// PasswordResetData holds data for rendering the password reset template.
type PasswordResetData struct {
	Name        string
	ResetLink   string
	CurrentYear int
}

// NewService creates a new email service instance.
// templatesDir should point to the directory containing HTML email templates
// (e.g., "web/email/templates").
func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
	}

	pattern := filepath.Join(cfg.TemplatesDir, "*.html")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

// SendPasswordReset sends the reset link to an account that requested a
// password reset.
func (s *Service) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	// Reset links are interpolated into HTML, reject javascript:, data:,
	// and other non-HTTP schemes.
	if err := validateResetURL(resetLink); err != nil {
		return fmt.Errorf("invalid reset link: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("link", resetLink).
			Msg("email service disabled, skipping password reset email")
		return nil
	}

	data := PasswordResetData{
		Name:        name,
		ResetLink:   resetLink,
		CurrentYear: time.Now().Year(),
	}
	htmlBody, err := s.renderTemplate("reset_password.html", data)
	if err != nil {
		return fmt.Errorf("failed to render password reset template: %w", err)
	}

	subject := "Reset Your Eventloka Password"
	if err := s.sendViaResend(ctx, to, subject, htmlBody); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("password_reset", "error").Inc()
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("password_reset", "success").Inc()

	s.logger.Info().
		Str("to", to).
		Msg("password reset email sent successfully")
	return nil
}

// validateEmailAddress validates an email address for format and header
// injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}

	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}

	return nil
}

// validateResetURL validates that the reset link is a safe HTTP(S) URL.
func validateResetURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (must be http or https)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// renderTemplate renders an email template with the given data.
func (s *Service) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
