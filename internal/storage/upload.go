package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Upload limits for listing images.
const (
	MaxUploadBytes = 10 * 1024 * 1024
	MaxUploadFiles = 10
)

var (
	ErrUnsupportedMediaType = errors.New("only image files are allowed")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
)

// allowed image MIME subtypes (the part after "image/").
var allowedImageSubtypes = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// ValidateUpload checks the declared MIME type and size against the limits.
func ValidateUpload(contentType string, size int64) error {
	subtype := contentType
	if idx := strings.LastIndex(contentType, "/"); idx >= 0 {
		subtype = contentType[idx+1:]
	}
	if _, ok := allowedImageSubtypes[strings.ToLower(subtype)]; !ok {
		return ErrUnsupportedMediaType
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// BuildObjectKey derives a collision-resistant bucket key:
// listings/<unix-ms>-<random>-<sanitized original name>.
func BuildObjectKey(originalName string, now time.Time) string {
	suffix := rand.Intn(1_000_000_000)
	return fmt.Sprintf("listings/%d-%d-%s", now.UnixMilli(), suffix, SanitizeFileName(originalName))
}

var (
	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// Turkish letters that do not decompose into base + combining mark.
	turkishFolding = strings.NewReplacer("ı", "i", "İ", "I")

	invalidKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\-_./!]`)
	underscoreRuns  = regexp.MustCompile(`_{2,}`)
)

// SanitizeFileName folds diacritics to ASCII and strips everything the
// storage provider rejects in object keys, preserving the extension.
func SanitizeFileName(fileName string) string {
	ext := path.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)

	base = turkishFolding.Replace(base)
	if folded, _, err := transform.String(diacriticStripper, base); err == nil {
		base = folded
	}

	base = invalidKeyChars.ReplaceAllString(base, "_")
	base = underscoreRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	return base + strings.ToLower(ext)
}
