// Package email sends transactional mail over SMTP. Development and
// production use different transports (a local capture service vs the real
// provider); the selection happens at construction time.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/infrastructure/config"
)

// Mailer implements ports.Mailer.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      zerolog.Logger
}

// NewMailer picks the transport matching the environment.
func NewMailer(cfg config.MailConfig, production bool, log zerolog.Logger) *Mailer {
	m := &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		log:      log,
	}
	if production {
		m.host = cfg.ProdHost
		m.port = cfg.ProdPort
		m.username = cfg.ProdUsername
		m.password = cfg.ProdPassword
	}
	return m
}

const welcomeTemplate = `<h1>Welcome to Natours, {{.FirstName}}!</h1>
<p>We're glad to have you. Upload a photo and tell us about yourself on your
<a href="{{.URL}}">account page</a>.</p>`

const resetTemplate = `<h1>Forgot your password, {{.FirstName}}?</h1>
<p>Submit a PATCH request with your new password and password confirmation to:
<a href="{{.URL}}">{{.URL}}</a></p>
<p>The link is valid for 10 minutes. If you didn't ask for this, ignore it.</p>`

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeTemplate))
	resetTmpl   = template.Must(template.New("reset").Parse(resetTemplate))
)

func (m *Mailer) SendWelcome(ctx context.Context, user *domain.User, url string) error {
	return m.send(ctx, user, url, welcomeTmpl, "Welcome to Natours, we're glad to have you!")
}

func (m *Mailer) SendPasswordReset(ctx context.Context, user *domain.User, url string) error {
	return m.send(ctx, user, url, resetTmpl, "Your password reset token (valid for 10 minutes)")
}

func (m *Mailer) send(ctx context.Context, user *domain.User, url string, tmpl *template.Template, subject string) error {
	firstName, _, _ := strings.Cut(user.Name, " ")

	var body bytes.Buffer
	err := tmpl.Execute(&body, struct {
		FirstName string
		URL       string
	}{FirstName: firstName, URL: url})
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("email from: %w", err)
	}
	if err := msg.To(user.Email); err != nil {
		return fmt.Errorf("email to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	opts := []mail.Option{mail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	} else {
		// capture services in development usually run without auth or TLS
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("to", user.Email).Str("subject", subject).Msg("email sent")
	return nil
}
