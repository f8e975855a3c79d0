package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"crm_portal_backend/internal/importer/domain"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers transactional email. A nil *SMTPSender satisfies callers
// when email is disabled.
type Sender interface {
	SendImportSummaryEmail(ctx context.Context, toEmail, actorName string, succeeded, failed int, records []*domain.Prospect) error
}

// SMTPSender delivers mail over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendImportSummaryEmail mails the acting user a recap of a finished import
// batch with the records that landed locally.
func (s *SMTPSender) SendImportSummaryEmail(ctx context.Context, toEmail, actorName string, succeeded, failed int, records []*domain.Prospect) error {
	if s == nil {
		return nil
	}

	content, err := renderEmailTemplate("import_summary.html", importSummaryEmailData{
		baseEmailData: baseEmailData{
			Title:   "Resumen de importación",
			Heading: "Importación completada",
		},
		ActorName: actorName,
		Succeeded: succeeded,
		Failed:    failed,
		Records:   records,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectImportSummary, content)
}
