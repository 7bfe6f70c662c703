package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	Timeout      time.Duration
}

// Attachment is a file sent along with a message
type Attachment struct {
	FileName string
	Content  []byte
}

// QuoteEmail carries what the quote delivery message shows
type QuoteEmail struct {
	To           string
	CustomerName string
	CompanyName  string
	QuoteNumber  string
	Title        string
	Total        string
	Currency     string
	ValidUntil   string
	Attachments  []Attachment
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &EmailService{config: config}
}

// SendQuote delivers a quote to the customer with its attachments
func (s *EmailService) SendQuote(ctx context.Context, q QuoteEmail) error {
	htmlContent, err := renderQuoteEmail(q)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Quote %s from %s", q.QuoteNumber, q.CompanyName)
	return s.send(ctx, q.To, subject, htmlContent, q.Attachments...)
}

// send sends an email using SMTP
func (s *EmailService) send(ctx context.Context, to, subject, htmlBody string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.config.FromName, s.config.FromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	opts := []gomail.Option{
		gomail.WithPort(s.config.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(s.config.Timeout),
	}
	if s.config.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.config.SMTPUsername),
			gomail.WithPassword(s.config.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(s.config.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// renderQuoteEmail renders the quote delivery template
func renderQuoteEmail(q QuoteEmail) (string, error) {
	tmpl, err := template.New("quote").Parse(quoteTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, q); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// quoteTemplate is the HTML template for quote delivery emails
const quoteTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Quote {{.QuoteNumber}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
                    <tr>
                        <td style="background-color: #2563eb; padding: 32px 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 24px; font-weight: 600;">{{.CompanyName}}</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin: 0 0 20px 0;">
                                Hello {{.CustomerName}},
                            </p>
                            <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin: 0 0 20px 0;">
                                Please find attached quote <strong>{{.QuoteNumber}}</strong>{{if .Title}} ({{.Title}}){{end}}.
                            </p>
                            <p style="color: #1a1a2e; font-size: 18px; font-weight: 600; margin: 0 0 20px 0;">
                                Total: {{.Total}} {{.Currency}}
                            </p>
                            {{if .ValidUntil}}
                            <p style="color: #718096; font-size: 14px; line-height: 1.6; margin: 0;">
                                This quote is valid until {{.ValidUntil}}.
                            </p>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #f8fafc; padding: 24px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #a0aec0; font-size: 13px; margin: 0;">
                                This email was sent by {{.CompanyName}}
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
