// Package mail delivers account e-mails.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	gomail "github.com/wneessen/go-mail"
)

var ErrAlreadyActivated = errors.New("user is already activated")

type Mailer interface {
	SendUserConfirmation(ctx context.Context, user *domain.User, lang string) error
}

// Confirmation is a rendered account confirmation e-mail.
type Confirmation struct {
	To      string
	Subject string
	Body    string
	Link    string
}

// RenderConfirmation builds the confirmation e-mail for user in lang.
func RenderConfirmation(tr *i18n.Translator, activationURL string, user *domain.User, lang string) (*Confirmation, error) {
	if user.ActivationSecret == nil {
		return nil, ErrAlreadyActivated
	}
	link := strings.TrimRight(activationURL, "/") + "/" + url.PathEscape(*user.ActivationSecret)
	return &Confirmation{
		To:      user.Email,
		Subject: tr.Translate("mail.confirmation_subject", lang),
		Body:    fmt.Sprintf(tr.Translate("mail.confirmation_body", lang), link),
		Link:    link,
	}, nil
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	ActivationURL string
}

// SMTPMailer sends mail through an SMTP relay, one connection per message.
type SMTPMailer struct {
	cfg SMTPConfig
	tr  *i18n.Translator
}

func NewSMTPMailer(cfg SMTPConfig, tr *i18n.Translator) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, tr: tr}
}

func (m *SMTPMailer) SendUserConfirmation(ctx context.Context, user *domain.User, lang string) error {
	c, err := RenderConfirmation(m.tr, m.cfg.ActivationURL, user, lang)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(c.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(c.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, c.Body)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", c.To, err)
	}
	return nil
}

// LogMailer writes confirmation mails to the log instead of sending them.
type LogMailer struct {
	logger        *slog.Logger
	tr            *i18n.Translator
	activationURL string
}

func NewLogMailer(logger *slog.Logger, tr *i18n.Translator, activationURL string) *LogMailer {
	return &LogMailer{logger: logger, tr: tr, activationURL: activationURL}
}

func (m *LogMailer) SendUserConfirmation(ctx context.Context, user *domain.User, lang string) error {
	c, err := RenderConfirmation(m.tr, m.activationURL, user, lang)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "confirmation mail",
		slog.String("to", c.To),
		slog.String("subject", c.Subject),
		slog.String("link", c.Link),
	)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
