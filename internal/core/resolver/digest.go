package resolver

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/yndnr/rest0-go/internal/core/domain"
)

// Digest algorithm names accepted by config.Digest.
const (
	DigestSHA1    = "sha1"
	DigestSHA256  = "sha256"
	DigestBLAKE2b = "blake2b"
)

// DefaultDigest matches the fingerprints produced by earlier REST0 hosts.
const DefaultDigest = DigestSHA1

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newHashFunc returns a constructor for the named digest.
func newHashFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "", DigestSHA1:
		return sha1.New, nil
	case DigestSHA256:
		return sha256.New, nil
	case DigestBLAKE2b:
		return func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes.
			h, _ := blake2b.New256(nil)
			return h
		}, nil
	default:
		return nil, domain.ErrInvalidSetting.WithDetails(fmt.Sprintf("config.Digest: unknown algorithm %q", name))
	}
}

// decodeDigest decodes a single JSON value from r while feeding every byte
// consumed into h. The whole stream is consumed so the digest covers the
// exact content, including a leading BOM and trailing whitespace.
func decodeDigest(r io.Reader, h hash.Hash) (any, []byte, error) {
	br := bufio.NewReader(io.TeeReader(r, h))

	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, domain.ErrDocumentInvalid.Wrap(err)
	}

	// Anything but whitespace after the value is a malformed document.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return nil, nil, domain.ErrDocumentInvalid.Wrap(err)
	}

	return doc, h.Sum(nil), nil
}
