package query

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ongelEstate/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Lead{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 12},
		{"negative page", -3, 5, 1, 5},
		{"limit above cap", 1, 500, 1, MaxLimit},
		{"passthrough", 2, 20, 2, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := ClampPage(tc.page, tc.limit, 12)
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestResolveSort(t *testing.T) {
	allowed := map[string]string{"createdAt": "created_at", "price": "price"}

	if got := ResolveSort("price", "asc", "createdAt", allowed); got != "price ASC" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveSort("price", "desc", "createdAt", allowed); got != "price DESC" {
		t.Fatalf("got %q", got)
	}
	// Unknown fields and orders fall back to safe values.
	if got := ResolveSort("password_hash", "asc", "createdAt", allowed); got != "created_at ASC" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveSort("price", "sideways", "createdAt", allowed); got != "price DESC" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_Pagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 15; i++ {
		lead := database.Lead{
			FirstName: fmt.Sprintf("Visitor%02d", i),
			LastName:  "Test",
			Email:     fmt.Sprintf("v%02d@example.com", i),
			Source:    database.LeadSourceContactForm,
			Status:    database.LeadNew,
		}
		if err := db.Create(&lead).Error; err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}

	result, err := Run[database.Lead](db.Model(&database.Lead{}), "email ASC", 2, 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Total != 15 {
		t.Fatalf("total = %d, want 15", result.Total)
	}
	if result.TotalPages != 2 {
		t.Fatalf("totalPages = %d, want 2", result.TotalPages)
	}
	if len(result.Data) != 5 {
		t.Fatalf("page 2 rows = %d, want 5", len(result.Data))
	}
	if result.Page != 2 || result.Limit != 10 {
		t.Fatalf("echo page=%d limit=%d", result.Page, result.Limit)
	}
	if result.Data[0].Email != "v10@example.com" {
		t.Fatalf("first row on page 2 = %s", result.Data[0].Email)
	}
}

func TestForAgent_ScopesToOwnRows(t *testing.T) {
	db := newTestDB(t)

	agentA := uuid.New()
	agentB := uuid.New()
	for _, agent := range []uuid.UUID{agentA, agentA, agentB} {
		id := agent
		lead := database.Lead{
			FirstName:       "Scoped",
			LastName:        "Lead",
			Email:           "lead@example.com",
			Source:          database.LeadSourceContactForm,
			AssignedAgentID: &id,
		}
		if err := db.Create(&lead).Error; err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}
	// One unassigned lead that no agent should see.
	if err := db.Create(&database.Lead{
		FirstName: "Unassigned",
		LastName:  "Lead",
		Email:     "nobody@example.com",
		Source:    database.LeadSourceContactForm,
	}).Error; err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	var agentRows []database.Lead
	if err := ForAgent(db.Model(&database.Lead{}), database.RoleAgent, agentA).Find(&agentRows).Error; err != nil {
		t.Fatalf("agent query: %v", err)
	}
	if len(agentRows) != 2 {
		t.Fatalf("agent sees %d rows, want 2", len(agentRows))
	}

	var adminRows []database.Lead
	if err := ForAgent(db.Model(&database.Lead{}), database.RoleAdmin, agentA).Find(&adminRows).Error; err != nil {
		t.Fatalf("admin query: %v", err)
	}
	if len(adminRows) != 4 {
		t.Fatalf("admin sees %d rows, want 4", len(adminRows))
	}
}

func TestOwnedBy(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	if !OwnedBy(database.RoleAdmin, nil, me) {
		t.Fatal("admin must own everything")
	}
	if !OwnedBy(database.RoleAgent, &me, me) {
		t.Fatal("agent must own their own assignment")
	}
	if OwnedBy(database.RoleAgent, &other, me) {
		t.Fatal("agent must not own another agent's assignment")
	}
	if OwnedBy(database.RoleAgent, nil, me) {
		t.Fatal("agent must not own unassigned rows")
	}
}
