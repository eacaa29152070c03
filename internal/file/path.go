package file

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxDisplayNameBytes = 255
	maxSafeNameBytes    = 128
	defaultContentType  = "application/octet-stream"
)

// NewPublicID returns a random (v4) UUID string. Uniqueness is probabilistic;
// the metadata store's unique constraint is the backstop.
func NewPublicID() string {
	return uuid.NewString()
}

// validPublicID rejects anything that is not a canonical UUID before it reaches a store.
func validPublicID(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.String() == s
}

// StoragePath derives the content-store key for a file.
func StoragePath(ownerID, publicID, displayName string) string {
	return ownerID + "/" + publicID + "/" + safeName(displayName)
}

// safeName reduces a display name to [A-Za-z0-9._-], with no leading dots.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), ".")
	if len(s) > maxSafeNameBytes {
		s = s[len(s)-maxSafeNameBytes:]
	}
	if s == "" {
		return "file"
	}
	return s
}

// Link builds the shareable URL for a public id.
func Link(baseURL, publicID string) string {
	return strings.TrimRight(baseURL, "/") + "/d/" + publicID
}

// validateUpload normalises the client-supplied name and content type.
func validateUpload(filename, contentType string, size, maxBytes int64) (string, string, error) {
	name := strings.TrimSpace(filename)
	switch {
	case name == "":
		return "", "", fmt.Errorf("%w: filename is required", ErrInvalidInput)
	case len(name) > maxDisplayNameBytes:
		return "", "", fmt.Errorf("%w: filename longer than %d bytes", ErrInvalidInput, maxDisplayNameBytes)
	case !utf8.ValidString(name) || strings.ContainsRune(name, 0):
		return "", "", fmt.Errorf("%w: filename is not valid text", ErrInvalidInput)
	}

	if size < 0 {
		return "", "", fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	}
	if maxBytes > 0 && size > maxBytes {
		return "", "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}

	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return name, defaultContentType, nil
	}
	if _, _, err := mime.ParseMediaType(ct); err != nil {
		return "", "", fmt.Errorf("%w: content type %q: %v", ErrInvalidInput, ct, err)
	}
	return name, ct, nil
}
