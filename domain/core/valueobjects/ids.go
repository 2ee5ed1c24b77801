package valueobjects

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// keyEncoding renders random bytes as lowercase, URL-safe key text.
var keyEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// KeyLength is the length of generated short keys.
const KeyLength = 12

// NewID returns a fresh internal identifier.
func NewID() string {
	return uuid.New().String()
}

// NewKey returns a fresh short key used in public URLs.
func NewKey() string {
	id := uuid.New()
	return keyEncoding.EncodeToString(id[:])[:KeyLength]
}

// IsValidID reports whether s is a well-formed internal identifier.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidKey reports whether s looks like a short key.
func IsValidKey(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	}) == -1
}
