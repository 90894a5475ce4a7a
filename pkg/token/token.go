package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// DefaultLength is the default token length in bytes.
const DefaultLength = 32

// HashLength is the length of a hex encoded token hash.
const HashLength = sha256.Size * 2

// Generate returns a new random token.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns a token built from length random bytes.
func GenerateWithLength(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the lowercase hex SHA-256 of token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// ValidHash reports whether s looks like a value returned by Hash.
func ValidHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Verify reports whether token hashes to expectedHash. The comparison is
// constant-time and case-insensitive in the hash.
func Verify(token, expectedHash string) bool {
	actual := Hash(token)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(strings.ToLower(expectedHash))) == 1
}

// FromAuthorization extracts the token from an "Authorization: Bearer <t>"
// header value.
func FromAuthorization(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
