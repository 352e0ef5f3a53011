package models

import (
	"fmt"
	"time"
)

// base holds the lifecycle fields shared by all persistent entities.
type base struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func (b *base) ID() string            { return b.id }
func (b *base) CreatedAt() time.Time  { return b.createdAt }
func (b *base) UpdatedAt() time.Time  { return b.updatedAt }
func (b *base) DeletedAt() *time.Time { return b.deletedAt }

func (b *base) SetID(id string)           { b.id = id }
func (b *base) SetUpdatedAt(t time.Time)  { b.updatedAt = t }
func (b *base) SetDeletedAt(t *time.Time) { b.deletedAt = t }

// Session is a recurring-session occurrence whose tune log is edited.
type Session struct {
	base
	sequence   int
	name       string
	occurredOn string // ISO date of the occurrence
}

// NewSession creates a Session with the given sequence number, name and occurrence date.
func NewSession(sequence int, name, occurredOn string) *Session {
	now := time.Now()
	s := &Session{sequence: sequence, name: name, occurredOn: occurredOn}
	s.createdAt = now
	s.updatedAt = now
	return s
}

func (s *Session) Sequence() int      { return s.sequence }
func (s *Session) SetSequence(n int)  { s.sequence = n }
func (s *Session) Name() string       { return s.name }
func (s *Session) OccurredOn() string { return s.occurredOn }

// Validate checks that the session has a name and an occurrence date.
func (s *Session) Validate() error {
	if s.name == "" {
		return fmt.Errorf("session name is required")
	}
	if s.occurredOn == "" {
		return fmt.Errorf("session occurrence date is required")
	}
	return nil
}

// PersistedPill is a pill row with its fractional order_position token.
//
// The order_position string and the legacy order_number must always agree on
// ordering within one session; the repository enforces this at save time.
type PersistedPill struct {
	base
	sessionID     string
	orderPosition string
	raw           RawTune
}

// NewPersistedPill creates a PersistedPill for the given session from a raw tuple and order token.
func NewPersistedPill(sessionID string, raw RawTune, orderPosition string) *PersistedPill {
	now := time.Now()
	p := &PersistedPill{sessionID: sessionID, orderPosition: orderPosition, raw: raw}
	p.createdAt = now
	p.updatedAt = now
	return p
}

func (p *PersistedPill) SessionID() string     { return p.sessionID }
func (p *PersistedPill) OrderPosition() string { return p.orderPosition }
func (p *PersistedPill) Raw() RawTune          { return p.raw }

func (p *PersistedPill) SetOrderPosition(tok string) { p.orderPosition = tok }

// Validate checks that the pill belongs to a session and carries a tune name and order token.
func (p *PersistedPill) Validate() error {
	if p.sessionID == "" {
		return fmt.Errorf("pill session ID is required")
	}
	if p.raw.TuneName == "" {
		return fmt.Errorf("pill tune name is required")
	}
	if p.orderPosition == "" {
		return fmt.Errorf("pill order position is required")
	}
	return nil
}
