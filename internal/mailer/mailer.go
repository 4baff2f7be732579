// Package mailer delivers contact-form notifications over SMTP.
package mailer

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"ongelEstate/internal/config"
)

// ContactMessage is the content of one contact-form submission.
type ContactMessage struct {
	FullName string
	Email    string
	Phone    string
	Message  string
}

// Sender is what the contact handler depends on.
type Sender interface {
	SendContactEmail(msg ContactMessage) error
}

// Mailer sends notification mail through the configured SMTP relay.
// No retries: a transient provider failure is reported to the caller.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	recipient string
}

// ErrNotConfigured is returned when SMTP settings are missing.
var ErrNotConfigured = errors.New("smtp is not configured")

// New builds a Mailer; with incomplete SMTP settings it still constructs but
// every send fails with ErrNotConfigured.
func New(cfg config.SMTPConfig, recipient string) *Mailer {
	m := &Mailer{recipient: recipient}
	if !cfg.Configured() {
		return m
	}

	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	m.from = cfg.From
	if m.from == "" {
		m.from = cfg.User
	}
	return m
}

// SendContactEmail delivers the contact-form notification to the office inbox.
func (m *Mailer) SendContactEmail(msg ContactMessage) error {
	if m.dialer == nil {
		return ErrNotConfigured
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", m.recipient)
	mail.SetHeader("Reply-To", msg.Email)
	mail.SetHeader("Subject", "[Öngel Gayrimenkul] Yeni İletişim Formu Mesajı")
	mail.SetBody("text/plain", textBody(msg))
	mail.AddAlternative("text/html", htmlBody(msg))

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

func submissionDate() string {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		loc = time.UTC
	}
	return time.Now().In(loc).Format("02.01.2006 15:04")
}

func textBody(msg ContactMessage) string {
	var b strings.Builder
	b.WriteString("Öngel Gayrimenkul - Yeni İletişim Formu Mesajı\n\n")
	fmt.Fprintf(&b, "Ad Soyad: %s\n", msg.FullName)
	fmt.Fprintf(&b, "E-posta: %s\n", msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Telefon: %s\n", msg.Phone)
	}
	fmt.Fprintf(&b, "\nMesaj:\n%s\n", msg.Message)
	fmt.Fprintf(&b, "\nGönderim Tarihi: %s\n", submissionDate())
	return b.String()
}

func htmlBody(msg ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h2>Öngel Gayrimenkul - Yeni İletişim Formu Mesajı</h2>")
	fmt.Fprintf(&b, "<p><strong>Ad Soyad:</strong> %s</p>", html.EscapeString(msg.FullName))
	fmt.Fprintf(&b, "<p><strong>E-posta:</strong> %s</p>", html.EscapeString(msg.Email))
	if msg.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Telefon:</strong> %s</p>", html.EscapeString(msg.Phone))
	}
	escaped := strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>")
	fmt.Fprintf(&b, "<p><strong>Mesaj:</strong></p><p>%s</p>", escaped)
	fmt.Fprintf(&b, "<p><em>Gönderim Tarihi: %s</em></p>", submissionDate())
	return b.String()
}
