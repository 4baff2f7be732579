package mailer

import (
	"errors"
	"strings"
	"testing"

	"ongelEstate/internal/config"
)

func TestSendContactEmail_NotConfigured(t *testing.T) {
	m := New(config.SMTPConfig{}, "info@example.com")
	err := m.SendContactEmail(ContactMessage{FullName: "A", Email: "a@b.c", Message: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}

func TestTextBody(t *testing.T) {
	body := textBody(ContactMessage{
		FullName: "Ayşe Yılmaz",
		Email:    "ayse@example.com",
		Phone:    "+90 555 000 0000",
		Message:  "Bilgi almak istiyorum.",
	})

	for _, want := range []string{"Ayşe Yılmaz", "ayse@example.com", "+90 555 000 0000", "Bilgi almak istiyorum."} {
		if !strings.Contains(body, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestTextBodySkipsEmptyPhone(t *testing.T) {
	body := textBody(ContactMessage{FullName: "A", Email: "a@b.c", Message: "m"})
	if strings.Contains(body, "Telefon") {
		t.Fatal("phone line present without a phone")
	}
}

func TestHTMLBodyEscapesUserContent(t *testing.T) {
	body := htmlBody(ContactMessage{
		FullName: `<script>alert("x")</script>`,
		Email:    "a@b.c",
		Message:  "line1\nline2 & <b>bold</b>",
	})

	if strings.Contains(body, "<script>") {
		t.Fatal("script tag not escaped")
	}
	if !strings.Contains(body, "line1<br>line2") {
		t.Fatal("newlines not converted to <br>")
	}
	if !strings.Contains(body, "&amp;") || strings.Contains(body, "<b>bold</b>") {
		t.Fatal("html in message not escaped")
	}
}
