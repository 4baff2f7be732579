package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ongelEstate/internal/database"
)

func TestInitAdmin_OpenOnlyWhileNoAdminExists(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db)

	// An existing agent account does not close the endpoint.
	seedUser(t, db, database.RoleAgent)

	w := httptest.NewRecorder()
	h.InitAdmin(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/users/init-admin", map[string]any{
		"email":     "Kurucu@Example.com",
		"password":  "ilk-sifre-123",
		"firstName": "Kurucu",
		"lastName":  "Admin",
	})))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	created := decodeBody[database.User](t, w)
	if created.Role != database.RoleAdmin {
		t.Fatalf("role = %s, want admin", created.Role)
	}
	if created.Email != "kurucu@example.com" {
		t.Fatalf("email = %s, want lowercased", created.Email)
	}

	// Once an admin exists the endpoint answers 403 forever.
	w = httptest.NewRecorder()
	h.InitAdmin(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/users/init-admin", map[string]any{
		"email":     "ikinci@example.com",
		"password":  "baska-sifre-123",
		"firstName": "İkinci",
		"lastName":  "Deneme",
	})))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	var admins int64
	db.Model(&database.User{}).Where("role = ?", database.RoleAdmin).Count(&admins)
	if admins != 1 {
		t.Fatalf("admin accounts = %d, want 1", admins)
	}
}

func TestUserCreate_DuplicateEmailConflict(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db)

	w := httptest.NewRecorder()
	h.Create(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email":     "danisman@example.com",
		"password":  "gizli-sifre-1",
		"firstName": "Deniz",
		"lastName":  "Kaya",
	})))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	created := decodeBody[database.User](t, w)
	if created.Role != database.RoleAgent {
		t.Fatalf("role = %s, want default agent", created.Role)
	}

	// The same address with different casing is still a conflict.
	w = httptest.NewRecorder()
	h.Create(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/users", map[string]any{
		"email":     "Danisman@Example.com",
		"password":  "gizli-sifre-2",
		"firstName": "Derya",
		"lastName":  "Kaya",
	})))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestUserUpdate_EmailConflict(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db)

	taken := seedUser(t, db, database.RoleAgent)
	target := seedUser(t, db, database.RoleAgent)

	w := httptest.NewRecorder()
	c := newPublicContext(t, w, newJSONRequest(t, http.MethodPatch, "/api/users/x", map[string]any{
		"email": taken.Email,
	}))
	c.Params = gin.Params{{Key: "id", Value: target.ID.String()}}
	h.Update(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}

	// Re-submitting the user's own address is not a conflict.
	w = httptest.NewRecorder()
	c = newPublicContext(t, w, newJSONRequest(t, http.MethodPatch, "/api/users/x", map[string]any{
		"email":     target.Email,
		"firstName": "Yeni",
	}))
	c.Params = gin.Params{{Key: "id", Value: target.ID.String()}}
	h.Update(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	updated := decodeBody[database.User](t, w)
	if updated.FirstName != "Yeni" {
		t.Fatalf("firstName = %s, want Yeni", updated.FirstName)
	}
}

func TestUserDelete_SelfDeleteBlocked(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db)

	admin := seedUser(t, db, database.RoleAdmin)
	other := seedUser(t, db, database.RoleAgent)

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, admin, httptest.NewRequest(http.MethodDelete, "/api/users/x", nil))
	c.Params = gin.Params{{Key: "id", Value: admin.ID.String()}}
	h.Delete(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	c = newAuthedContext(t, w, admin, httptest.NewRequest(http.MethodDelete, "/api/users/x", nil))
	c.Params = gin.Params{{Key: "id", Value: other.ID.String()}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	// Already gone: 404, not another 204.
	w = httptest.NewRecorder()
	c = newAuthedContext(t, w, admin, httptest.NewRequest(http.MethodDelete, "/api/users/x", nil))
	c.Params = gin.Params{{Key: "id", Value: other.ID.String()}}
	h.Delete(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUserFindAgents_ActiveAgentsOnly(t *testing.T) {
	db := newTestDB(t)
	h := NewUserHandler(db)

	seedUser(t, db, database.RoleAdmin)
	active := seedUser(t, db, database.RoleAgent)
	inactive := seedUser(t, db, database.RoleAgent)
	if err := db.Model(&database.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w := httptest.NewRecorder()
	h.FindAgents(newPublicContext(t, w, httptest.NewRequest(http.MethodGet, "/api/users/agents", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	agents := decodeBody[[]database.User](t, w)
	if len(agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(agents))
	}
	if agents[0].ID != active.ID {
		t.Fatalf("agent = %s, want %s", agents[0].ID, active.ID)
	}
}
