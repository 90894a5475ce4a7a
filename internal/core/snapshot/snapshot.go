package snapshot

import (
	"bytes"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Source identifies where a snapshot was resolved from.
type Source string

const (
	// SourceRemote is the config.Url endpoint.
	SourceRemote Source = "remote"
	// SourceFile is the config.Path fallback file.
	SourceFile Source = "file"
)

// Snapshot pairs a content fingerprint with the decoded document.
//
// The document is shared between every request holding the snapshot and
// must be treated as read-only.
type Snapshot struct {
	fingerprint []byte
	document    any
	source      Source
	resolvedAt  time.Time
}

// New creates a snapshot. The fingerprint slice is copied.
func New(fingerprint []byte, document any, source Source, resolvedAt time.Time) *Snapshot {
	fp := make([]byte, len(fingerprint))
	copy(fp, fingerprint)
	return &Snapshot{
		fingerprint: fp,
		document:    document,
		source:      source,
		resolvedAt:  resolvedAt,
	}
}

// Fingerprint returns a copy of the raw digest bytes.
func (s *Snapshot) Fingerprint() []byte {
	fp := make([]byte, len(s.fingerprint))
	copy(fp, s.fingerprint)
	return fp
}

// Hex returns the fingerprint as lowercase hexadecimal.
func (s *Snapshot) Hex() string {
	return hex.EncodeToString(s.fingerprint)
}

// Document returns the decoded configuration document.
func (s *Snapshot) Document() any {
	return s.document
}

// Source returns where the snapshot was loaded from.
func (s *Snapshot) Source() Source {
	return s.source
}

// ResolvedAt returns when the snapshot was resolved.
func (s *Snapshot) ResolvedAt() time.Time {
	return s.resolvedAt
}

// SameContent reports whether both snapshots carry the same fingerprint.
// A nil snapshot only matches another nil.
func (s *Snapshot) SameContent(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return bytes.Equal(s.fingerprint, other.fingerprint)
}

// Cell holds the current snapshot.
//
// The zero value is an empty cell ready for use.
type Cell struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil if none was published yet.
func (c *Cell) Load() *Snapshot {
	return c.current.Load()
}

// Store publishes s as current and returns the snapshot it replaced.
// Storing nil is ignored so a failed resolve can never clear the cell.
func (c *Cell) Store(s *Snapshot) *Snapshot {
	if s == nil {
		return c.current.Load()
	}
	return c.current.Swap(s)
}
