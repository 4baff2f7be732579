package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
	"ongelEstate/internal/mailer"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fakeStorage struct {
	uploaded   map[string][]byte
	deleted    []string
	failDelete bool
	failUpload bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectKey string, reader io.Reader, _ int64, _ string) error {
	if s.failUpload {
		return errors.New("upload rejected")
	}
	b, _ := io.ReadAll(reader)
	s.uploaded[objectKey] = b
	return nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	if s.failDelete {
		return errors.New("delete rejected")
	}
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://cdn.example.invalid/listings-bucket/" + objectKey
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	fail  bool
}

func (e *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.fail {
		return nil, errors.New("queue unavailable")
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fakeSender struct {
	sent []mailer.ContactMessage
	err  error
}

func (s *fakeSender) SendContactEmail(msg mailer.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, role database.Role) database.User {
	t.Helper()
	user := database.User{
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedListing(t *testing.T, db *gorm.DB, agentID uuid.UUID, status database.ListingStatus) database.Listing {
	t.Helper()
	listing := database.Listing{
		Price:           1_000_000,
		Currency:        database.CurrencyTRY,
		Status:          status,
		Location:        "Istanbul",
		NetArea:         95,
		RoomCount:       "2+1",
		AssignedAgentID: agentID,
	}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

// newAuthedContext builds a test context carrying the same keys the auth
// middleware would set.
func newAuthedContext(t *testing.T, w *httptest.ResponseRecorder, user database.User, req *http.Request) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.UserIDKey, user.ID)
	c.Set(middleware.UserEmailKey, user.Email)
	c.Set(middleware.UserRoleKey, user.Role)
	return c
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newMultipartUpload(t *testing.T, field string, files map[string][]byte, contentTypes map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
		header.Set("Content-Type", contentTypes[name])
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
