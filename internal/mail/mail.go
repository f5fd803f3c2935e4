// Package mail renders transactional emails from embedded templates and
// delivers them through sendgrid. Every mail is written to the outbox table
// first; a background worker retries the ones that didn't go out.
package mail

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

type Config struct {
	APIKey         string        `mapstructure:"sendgrid_api_key"`
	FromEmail      string        `mapstructure:"from_email"`
	FromName       string        `mapstructure:"from_email_name"`
	ReplyTo        string        `mapstructure:"reply_to"`
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
}

// sender abstracts the sendgrid client so tests can swap it out.
type sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type Mailer struct {
	cli            sender
	mailRepository dependency.Mail
	c              *Config
	ctx            context.Context
	cancel         context.CancelFunc
	templates      map[string]*template.Template
}

func New(c *Config, mailRepository dependency.Mail) (dependency.Mailer, error) {
	return newMailer(c, mailRepository)
}

func newMailer(c *Config, mailRepository dependency.Mail) (*Mailer, error) {
	if c.APIKey == "" || c.FromEmail == "" || c.FromName == "" {
		return nil, fmt.Errorf("incomplete config: %+v", c)
	}

	m := &Mailer{
		cli:            sendgrid.NewSendClient(c.APIKey),
		mailRepository: mailRepository,
		c:              c,
		templates:      make(map[string]*template.Template),
	}

	if err := m.parseTemplates(); err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	return m, nil
}

func (m *Mailer) parseTemplates() error {
	dirEntries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("error reading template directory: %w", err)
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		tmpl, err := template.ParseFS(templatesFS, filepath.Join("templates", entry.Name()))
		if err != nil {
			return fmt.Errorf("error parsing template '%s': %w", entry.Name(), err)
		}
		m.templates[entry.Name()] = tmpl
	}

	return nil
}

func (m *Mailer) buildSendEmailRequest(to, tn string, data any) (*entity.SendEmailRequest, error) {
	tmpl, ok := m.templates[tn]
	if !ok {
		return nil, fmt.Errorf("template not found: %v", tn)
	}

	subject, ok := templateSubjects[tn]
	if !ok {
		return nil, fmt.Errorf("subject not found for template: %v", tn)
	}

	body := &strings.Builder{}
	if err := tmpl.Execute(body, data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}

	replyTo := m.c.ReplyTo
	if replyTo == "" {
		replyTo = m.c.FromEmail
	}

	return &entity.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.c.FromName, m.c.FromEmail),
		To:      to,
		Html:    body.String(),
		Subject: subject,
		ReplyTo: replyTo,
	}, nil
}

func (m *Mailer) send(ctx context.Context, ser *entity.SendEmailRequest) error {
	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(m.c.FromName, m.c.FromEmail),
		ser.Subject,
		sgmail.NewEmail("", ser.To),
		"",
		ser.Html,
	)
	email.SetReplyTo(sgmail.NewEmail("", ser.ReplyTo))

	resp, err := m.cli.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return gerr.MailApiLimitReached
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("error sending email bad status code: %s, status code: %d", resp.Body, resp.StatusCode)
	}

	return nil
}

// sendWithInsert records the mail in the outbox, attempts delivery once and
// marks it sent on success. A delivery failure is not an error for the
// caller; the worker picks the row up later.
func (m *Mailer) sendWithInsert(ctx context.Context, rep dependency.Repository, ser *entity.SendEmailRequest) error {
	id, err := rep.Mail().AddMail(ctx, ser)
	if err != nil {
		return fmt.Errorf("error inserting email: %w", err)
	}

	if err := m.send(ctx, ser); err != nil {
		slog.Default().ErrorContext(ctx, "can't send mail",
			slog.String("err", err.Error()),
		)
		return nil
	}

	if err := rep.Mail().UpdateSent(ctx, id); err != nil {
		return fmt.Errorf("error updating email: %w", err)
	}

	return nil
}
