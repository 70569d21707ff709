// Package mailer sends transactional emails over SMTP. Bodies are rendered
// from html/template; action links point at the frontend, which forwards the
// embedded token back to the API.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/placium/places-api/internal/config"
)

// Mailer implements service.Notifier over SMTP
type Mailer struct {
	client   *mail.Client
	from     string
	frontURL string
}

// New creates a mailer from SMTP settings
func New(cfg config.SMTPConfig, frontURL string) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Email),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &Mailer{client: client, from: cfg.Email, frontURL: frontURL}, nil
}

type templateData struct {
	Name      string
	FrontURL  string
	ActionURL string
}

// SendWelcome greets a new user and carries their email-verification link
func (m *Mailer) SendWelcome(ctx context.Context, to, name, actionToken string) error {
	return m.send(ctx, to, "Welcome to our service!", welcomeTemplate, templateData{
		Name:      name,
		FrontURL:  m.frontURL,
		ActionURL: m.frontURL + "/auth/verify-email?token=" + actionToken,
	})
}

// SendVerifyEmail carries a re-issued email-verification link
func (m *Mailer) SendVerifyEmail(ctx context.Context, to, name, actionToken string) error {
	return m.send(ctx, to, "Confirm your email", verifyTemplate, templateData{
		Name:      name,
		FrontURL:  m.frontURL,
		ActionURL: m.frontURL + "/auth/verify-email?token=" + actionToken,
	})
}

// SendForgotPassword carries a password-reset link
func (m *Mailer) SendForgotPassword(ctx context.Context, to, actionToken string) error {
	return m.send(ctx, to, "Reset Your Password", forgotPasswordTemplate, templateData{
		FrontURL:  m.frontURL,
		ActionURL: m.frontURL + "/auth/password-forgot?token=" + actionToken,
	})
}

// SendAccountRestore carries an account-restore link
func (m *Mailer) SendAccountRestore(ctx context.Context, to, actionToken string) error {
	return m.send(ctx, to, "Restore your account", accountRestoreTemplate, templateData{
		FrontURL:  m.frontURL,
		ActionURL: m.frontURL + "/auth/account-restore?token=" + actionToken,
	})
}

// SendLogout confirms that the user's session was closed
func (m *Mailer) SendLogout(ctx context.Context, to, name string) error {
	return m.send(ctx, to, "You've Logged Out", logoutTemplate, templateData{
		Name:     name,
		FrontURL: m.frontURL,
	})
}

func (m *Mailer) send(ctx context.Context, to, subject string, tpl *template.Template, data templateData) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)

	var body bytes.Buffer
	if err := tpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div>
  <h1>Welcome, {{.Name}}!</h1>
  <p>Only a little left, you need to confirm your email.</p>
  <a href="{{.ActionURL}}">Confirm Email</a>
  <p>or copy the link and paste it into your browser.</p>
  <a href="{{.ActionURL}}" target="_blank">{{.ActionURL}}</a>
</div>`))

var verifyTemplate = template.Must(template.New("verify").Parse(`<div>
  <h1>Hello, {{.Name}}!</h1>
  <p>Here is your new confirmation link.</p>
  <a href="{{.ActionURL}}">Confirm Email</a>
  <p>or copy the link and paste it into your browser.</p>
  <a href="{{.ActionURL}}" target="_blank">{{.ActionURL}}</a>
</div>`))

var forgotPasswordTemplate = template.Must(template.New("forgot").Parse(`<div>
  <h1>Password reset</h1>
  <p>Follow the link to set a new password. If it wasn't you, ignore this email.</p>
  <a href="{{.ActionURL}}">Reset Password</a>
  <p>or copy the link and paste it into your browser.</p>
  <a href="{{.ActionURL}}" target="_blank">{{.ActionURL}}</a>
</div>`))

var accountRestoreTemplate = template.Must(template.New("restore").Parse(`<div>
  <h1>Restore your account</h1>
  <p>Follow the link to restore your account and set a new password.</p>
  <a href="{{.ActionURL}}">Restore Account</a>
  <p>or copy the link and paste it into your browser.</p>
  <a href="{{.ActionURL}}" target="_blank">{{.ActionURL}}</a>
</div>`))

var logoutTemplate = template.Must(template.New("logout").Parse(`<div>
  <h1>Goodbye, {{.Name}}!</h1>
  <p>You have been logged out. If it wasn't you, change your password right away.</p>
  <a href="{{.FrontURL}}">Back to the site</a>
</div>`))
