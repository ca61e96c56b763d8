package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// MailerConfig holds the SMTP settings for the security mailbox.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string // security operator mailbox
	BaseURL  string // public base for the allow/deny links
}

// Mailer sends unauthorized-attempt alerts over SMTP with the captured
// still embedded and one-click allow/deny links for the operator.
type Mailer struct {
	client *mail.Client
	cfg    MailerConfig
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, cfg: cfg}, nil
}

func (m *Mailer) Send(ctx context.Context, n Notification) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject("Unauthorized Entry Attempt")
	msg.SetBodyString(mail.TypeTextHTML, m.body(n))

	if n.ImagePath != "" {
		// The file is read at send time; a missing still surfaces as a
		// send error, not here.
		msg.EmbedFile(n.ImagePath)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert for attempt %d: %w", n.AttemptID, err)
	}
	return nil
}

func (m *Mailer) body(n Notification) string {
	allow := fmt.Sprintf("%s/security/verify/%d/allow", m.cfg.BaseURL, n.AttemptID)
	deny := fmt.Sprintf("%s/security/verify/%d/deny", m.cfg.BaseURL, n.AttemptID)

	return fmt.Sprintf(`<html>
  <body>
    <h2>Unauthorized Entry Attempt Detected</h2>
    <p>Timestamp: %s</p>
    <p>Please verify the person's identity and approve or deny entry:</p>
    <p>
      <a href="%s">Allow Entry</a>
      <a href="%s">Deny Entry</a>
    </p>
  </body>
</html>`, n.Timestamp.UTC().Format(time.RFC1123), allow, deny)
}
