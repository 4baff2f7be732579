package storage

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{"jpeg ok", "image/jpeg", 1024, nil},
		{"jpg ok", "image/jpg", 1024, nil},
		{"png ok", "image/png", MaxUploadBytes, nil},
		{"gif ok", "image/gif", 1024, nil},
		{"webp ok", "image/webp", 1024, nil},
		{"pdf rejected", "application/pdf", 1024, ErrUnsupportedMediaType},
		{"svg rejected", "image/svg+xml", 1024, ErrUnsupportedMediaType},
		{"empty rejected", "", 1024, ErrUnsupportedMediaType},
		{"oversized rejected", "image/png", MaxUploadBytes + 1, ErrFileTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.contentType, tc.size)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"salon fotoğrafı.JPG", "salon_fotografi.jpg"},
		{"İstanbul-manzara.png", "Istanbul-manzara.png"},
		{"a  b   c.webp", "a_b_c.webp"},
		{"çok***garip???isim.png", "cok_garip_isim.png"},
	}

	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := BuildObjectKey("deniz manzarası.jpg", now)

	pattern := regexp.MustCompile(`^listings/1700000000000-\d+-deniz_manzarasi\.jpg$`)
	if !pattern.MatchString(key) {
		t.Fatalf("key %q does not match expected shape", key)
	}
}

func TestBuildObjectKeyDiffersPerCall(t *testing.T) {
	now := time.Now()
	a := BuildObjectKey("same.png", now)
	b := BuildObjectKey("same.png", now)
	if a == b {
		t.Fatalf("two keys for the same input collided: %q", a)
	}
}
