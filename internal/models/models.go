package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the tunelog service.
// Implementations include Session and PersistedPill.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// PillState describes how far a pill has been resolved against the tune catalogue.
type PillState int

const (
	StateLinked   PillState = iota // Pill references a canonical tune
	StateUnlinked                  // Free-text pill with no canonical reference
	StateLoading                   // Awaiting a result from the matching service
)

func (s PillState) String() string {
	switch s {
	case StateLinked:
		return "linked"
	case StateUnlinked:
		return "unlinked"
	case StateLoading:
		return "loading"
	default:
		return ""
	}
}

// TunePill is one played-tune record in the log, the atomic editable unit.
//
// ID is a process-local token, reassigned on save; it never survives a
// clipboard round trip.
type TunePill struct {
	ID          string    `json:"-"`
	OrderNumber int       `json:"order_number"`
	TuneID      string    `json:"tune_id,omitempty"` // empty means unlinked
	TuneName    string    `json:"tune_name"`
	Setting     string    `json:"setting,omitempty"`
	TuneType    string    `json:"tune_type,omitempty"`
	State       PillState `json:"-"`
}

// Linked reports whether the pill references a canonical tune.
func (p TunePill) Linked() bool { return p.TuneID != "" }

// TuneSet is a non-empty ordered sequence of pills played contiguously.
type TuneSet []TunePill

// Document is the ordered tune sets of one session occurrence.
//
// Invariant: no TuneSet in a Document is ever empty; removing a set's last
// pill removes the set.
type Document []TuneSet

// Clone returns a structurally independent copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for i, set := range d {
		cp := make(TuneSet, len(set))
		copy(cp, set)
		out[i] = cp
	}
	return out
}

// SetCount returns the number of tune sets in the document.
func (d Document) SetCount() int { return len(d) }

// PillCount returns the total number of pills across all sets.
func (d Document) PillCount() int {
	n := 0
	for _, set := range d {
		n += len(set)
	}
	return n
}

// Relation describes where an insertion lands relative to a referenced pill.
type Relation int

const (
	Before Relation = iota // Insert before the referenced pill
	After                  // Insert after the referenced pill
	NewSet                 // Insert as whole sets at a set boundary
)

func (r Relation) String() string {
	switch r {
	case Before:
		return "before"
	case After:
		return "after"
	case NewSet:
		return "newset"
	default:
		return ""
	}
}

// Position is a navigational reference used to target an insertion or to
// resume editing.
//
// For NewSet positions PillIndex is ignored and SetIndex names the set
// boundary the insertion lands at.
type Position struct {
	SetIndex  int
	PillIndex int
	Relation  Relation
}

// SessionExport pairs a session occurrence's metadata with its grouped tune
// log for file export.
type SessionExport struct {
	Name       string   `json:"name"`
	OccurredOn string   `json:"occurred_on"`
	Sets       int      `json:"sets"`
	Tunes      int      `json:"tunes"`
	Doc        Document `json:"-"`
}

// NewSessionExport builds a SessionExport for the given session metadata and document.
func NewSessionExport(name, occurredOn string, doc Document) *SessionExport {
	return &SessionExport{
		Name:       name,
		OccurredOn: occurredOn,
		Sets:       doc.SetCount(),
		Tunes:      doc.PillCount(),
		Doc:        doc,
	}
}

// RawTune is the persisted tuple shape the document is loaded from and
// exported back to.
//
// A false ContinuesSet starts a new set; true continues the current one.
type RawTune struct {
	OrderNumber  int    `json:"order_number"`
	ContinuesSet bool   `json:"continues_set"`
	TuneID       string `json:"tune_id,omitempty"`
	TuneName     string `json:"tune_name"`
	Setting      string `json:"setting,omitempty"`
	TuneType     string `json:"tune_type,omitempty"`
}
