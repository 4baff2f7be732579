package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ongelEstate/internal/database"
	"ongelEstate/internal/mailer"
)

func newPublicContext(t *testing.T, w *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestContactSubmit_StoresLeadAndNotifies(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	h := NewContactHandler(db, sender)

	body := map[string]any{
		"fullName": "Ayşe Nur Yılmaz",
		"email":    "ayse@example.com",
		"phone":    "+90 555 000 0000",
		"message":  "Merkezdeki daire hakkında bilgi almak istiyorum.",
	}
	w := httptest.NewRecorder()
	h.Submit(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/public/contact", body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var lead database.Lead
	if err := db.First(&lead).Error; err != nil {
		t.Fatalf("load lead: %v", err)
	}
	if lead.FirstName != "Ayşe Nur" || lead.LastName != "Yılmaz" {
		t.Fatalf("name split = %q / %q", lead.FirstName, lead.LastName)
	}
	if lead.Source != database.LeadSourceContactForm || lead.Status != database.LeadNew {
		t.Fatalf("source=%s status=%s", lead.Source, lead.Status)
	}
	if lead.AssignedAgentID != nil {
		t.Fatal("contact lead must start unassigned")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].FullName != "Ayşe Nur Yılmaz" {
		t.Fatalf("email fullName = %q", sender.sent[0].FullName)
	}
}

func TestContactSubmit_HoneypotDropsSilently(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	h := NewContactHandler(db, sender)

	body := map[string]any{
		"fullName": "Bot Botson",
		"email":    "bot@example.com",
		"message":  "buy cheap listings now, great offer",
		"website":  "https://spam.example.com",
	}
	w := httptest.NewRecorder()
	h.Submit(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/public/contact", body)))

	// The bot still sees a success response.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&database.Lead{}).Count(&count)
	if count != 0 {
		t.Fatal("honeypot submission produced a lead")
	}
	if len(sender.sent) != 0 {
		t.Fatal("honeypot submission produced an email")
	}
}

func TestContactSubmit_MailFailureStillSucceeds(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{err: mailer.ErrNotConfigured}
	h := NewContactHandler(db, sender)

	body := map[string]any{
		"fullName": "Mehmet Demir",
		"email":    "mehmet@example.com",
		"message":  "Randevu almak istiyorum.",
	}
	w := httptest.NewRecorder()
	h.Submit(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/public/contact", body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var count int64
	db.Model(&database.Lead{}).Count(&count)
	if count != 1 {
		t.Fatalf("lead rows = %d, want 1", count)
	}
}

func TestContactSubmit_SMTPHardFailureIs400(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{err: errors.New("relay refused")}
	h := NewContactHandler(db, sender)

	body := map[string]any{
		"fullName": "Fatma Kaya",
		"email":    "fatma@example.com",
		"message":  "Satılık daireler hakkında bilgi rica ediyorum.",
	}
	w := httptest.NewRecorder()
	h.Submit(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/contact", body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	// The lead survives even though the notification bounced.
	var count int64
	db.Model(&database.Lead{}).Count(&count)
	if count != 1 {
		t.Fatalf("lead rows = %d, want 1", count)
	}
}

func TestContactSubmit_RejectsInvalidPayload(t *testing.T) {
	db := newTestDB(t)
	h := NewContactHandler(db, &fakeSender{})

	cases := []map[string]any{
		{"fullName": "No Email Given", "message": "long enough message"},
		{"fullName": "Ab", "email": "a@b.c", "message": "long enough message"},
		{"fullName": "Short Msg", "email": "a@b.c", "message": "hi"},
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		h.Submit(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/contact", body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: status = %d, want 400", body, w.Code)
		}
	}
}
