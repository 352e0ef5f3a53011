// package services defines interface Matcher for the tune-matching HTTP API
package services

import (
	"context"
)

// Matcher resolves free-text tune names against the canonical tune catalogue.
//
// Implementations must be safe to call concurrently; the paste reconciler
// issues one call per unresolved pill in parallel.
type Matcher interface {
	// Match searches the catalogue for the best match of a tune name.
	// A name with no acceptable match returns an error wrapping
	// [shared.ErrNoMatch].
	Match(ctx context.Context, name string) (*Match, error)
}

// Match is a resolved tune reference returned by the matching service.
type Match struct {
	TuneID   string `json:"tune_id"`
	Setting  string `json:"setting"`
	TuneType string `json:"tune_type"`
}
