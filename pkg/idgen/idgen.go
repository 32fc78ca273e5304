package idgen

import "github.com/google/uuid"

// UUIDGenerator issues random (v4) UUIDs
type UUIDGenerator struct{}

// NewID implements ports.IDGenerator
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence returns preset ids in order, then falls back to random UUIDs.
// Used where a test needs to know the idempotency key in advance.
type Sequence struct {
	ids  []string
	next int
}

// NewSequence creates a generator that yields ids first
func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

// NewID implements ports.IDGenerator
func (s *Sequence) NewID() string {
	if s.next < len(s.ids) {
		id := s.ids[s.next]
		s.next++
		return id
	}
	return uuid.NewString()
}
