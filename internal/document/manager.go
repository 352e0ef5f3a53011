package document

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/shared"
)

// DefaultUndoDepth is the undo stack capacity used when Opts leaves it unset.
const DefaultUndoDepth = 50

// ChangeFunc receives the full document after every successful mutation,
// including undo and redo.
type ChangeFunc func(doc models.Document)

// PillRef locates a pill inside the document.
type PillRef struct {
	SetIndex  int
	PillIndex int
	Pill      models.TunePill
}

// PillUpdate carries the partial fields of an UpdatePill call. Nil fields are
// left untouched.
type PillUpdate struct {
	TuneID   *string
	TuneName *string
	Setting  *string
	TuneType *string
	State    *models.PillState
}

// Opts contains configuration options for creating a Manager.
type Opts struct {
	UndoDepth int
	OnChange  ChangeFunc
	Logger    *log.Logger
}

// Manager owns the tune-log document of one open editing session and its
// bounded undo/redo history.
type Manager struct {
	doc      models.Document
	undo     []models.Document
	redo     []models.Document
	depth    int
	onChange ChangeFunc
	logger   *log.Logger
}

// NewManager creates a Manager with an empty document.
func NewManager(opts Opts) *Manager {
	if opts.UndoDepth <= 0 {
		opts.UndoDepth = DefaultUndoDepth
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		doc:      models.Document{},
		depth:    opts.UndoDepth,
		onChange: opts.OnChange,
		logger:   shared.WithLogger(opts.Logger, "component", "document"),
	}
}

// SetOnChange replaces the change callback.
func (m *Manager) SetOnChange(fn ChangeFunc) { m.onChange = fn }

// Document returns a structurally independent copy of the current document.
func (m *Manager) Document() models.Document { return m.doc.Clone() }

// SetCount returns the number of tune sets in the document.
func (m *Manager) SetCount() int { return m.doc.SetCount() }

// PillCount returns the total number of pills in the document.
func (m *Manager) PillCount() int { return m.doc.PillCount() }

// Load replaces the document from raw persisted tuples and clears both
// history stacks. It records no undo entry: loading supersedes the previous
// editing session entirely, including any in-flight async work keyed to the
// old pill IDs.
//
// Consecutive tuples are grouped into sets wherever ContinuesSet is false; a
// false value starts a new set, true continues the current one. A leading
// true is treated as a set start.
func (m *Manager) Load(raws []models.RawTune) {
	doc := models.Document{}
	for _, raw := range raws {
		pill := pillFromRaw(raw)
		if len(doc) == 0 || !raw.ContinuesSet {
			doc = append(doc, models.TuneSet{pill})
		} else {
			last := len(doc) - 1
			doc[last] = append(doc[last], pill)
		}
	}

	m.doc = doc
	m.undo = nil
	m.redo = nil
	m.logger.Debug("loaded document", "sets", doc.SetCount(), "pills", doc.PillCount())
	m.notify()
}

// ExportRaw serializes the document back to the persisted tuple shape, with
// sequential order numbers starting at 1.
func (m *Manager) ExportRaw() []models.RawTune {
	raws := make([]models.RawTune, 0, m.doc.PillCount())
	n := 0
	for _, set := range m.doc {
		for j, pill := range set {
			n++
			raws = append(raws, models.RawTune{
				OrderNumber:  n,
				ContinuesSet: j > 0,
				TuneID:       pill.TuneID,
				TuneName:     pill.TuneName,
				Setting:      pill.Setting,
				TuneType:     pill.TuneType,
			})
		}
	}
	return raws
}

// ExportSnapshot returns a structural clone of the document for external
// persistence round trips.
func (m *Manager) ExportSnapshot() models.Document { return m.doc.Clone() }

// ImportSnapshot replaces the document from an exported snapshot. Unlike
// Load, the import itself is undoable.
func (m *Manager) ImportSnapshot(doc models.Document) error {
	for i, set := range doc {
		if len(set) == 0 {
			return fmt.Errorf("%w: set %d", shared.ErrEmptySet, i)
		}
	}

	m.snapshot()
	m.doc = doc.Clone()
	m.notify()
	return nil
}

// AddSet appends a whole tune set at the given set boundary. An index below
// zero or past the end appends at the end.
func (m *Manager) AddSet(at int, set models.TuneSet) error {
	if len(set) == 0 {
		return shared.ErrEmptySet
	}
	if at < 0 || at > len(m.doc) {
		at = len(m.doc)
	}

	m.snapshot()
	cp := make(models.TuneSet, len(set))
	copy(cp, set)
	for i := range cp {
		if cp[i].ID == "" {
			cp[i].ID = shared.GenerateID()
		}
	}

	m.doc = append(m.doc, nil)
	copy(m.doc[at+1:], m.doc[at:])
	m.doc[at] = cp
	m.notify()
	return nil
}

// RemoveSet removes the tune set at the given index.
func (m *Manager) RemoveSet(setIndex int) error {
	if setIndex < 0 || setIndex >= len(m.doc) {
		return fmt.Errorf("%w: set %d", shared.ErrNotFound, setIndex)
	}

	m.snapshot()
	m.doc = append(m.doc[:setIndex], m.doc[setIndex+1:]...)
	m.notify()
	return nil
}

// AddPill inserts a pill into the set at setIndex. An at below zero or past
// the end of the set appends at the end of the set.
func (m *Manager) AddPill(setIndex, at int, pill models.TunePill) error {
	if setIndex < 0 || setIndex >= len(m.doc) {
		return fmt.Errorf("%w: set %d", shared.ErrNotFound, setIndex)
	}
	set := m.doc[setIndex]
	if at < 0 || at > len(set) {
		at = len(set)
	}

	m.snapshot()
	if pill.ID == "" {
		pill.ID = shared.GenerateID()
	}

	set = append(set, models.TunePill{})
	copy(set[at+1:], set[at:])
	set[at] = pill
	m.doc[setIndex] = set
	m.notify()
	return nil
}

// RemovePill removes one pill. Removing a set's last pill removes the set,
// preserving the no-empty-set invariant.
func (m *Manager) RemovePill(setIndex, pillIndex int) error {
	if setIndex < 0 || setIndex >= len(m.doc) {
		return fmt.Errorf("%w: set %d", shared.ErrNotFound, setIndex)
	}
	set := m.doc[setIndex]
	if pillIndex < 0 || pillIndex >= len(set) {
		return fmt.Errorf("%w: set %d pill %d", shared.ErrNotFound, setIndex, pillIndex)
	}

	m.snapshot()
	if len(set) == 1 {
		m.doc = append(m.doc[:setIndex], m.doc[setIndex+1:]...)
	} else {
		m.doc[setIndex] = append(set[:pillIndex], set[pillIndex+1:]...)
	}
	m.notify()
	return nil
}

// UpdatePill applies the non-nil fields of update to one pill.
func (m *Manager) UpdatePill(setIndex, pillIndex int, update PillUpdate) error {
	if setIndex < 0 || setIndex >= len(m.doc) {
		return fmt.Errorf("%w: set %d", shared.ErrNotFound, setIndex)
	}
	if pillIndex < 0 || pillIndex >= len(m.doc[setIndex]) {
		return fmt.Errorf("%w: set %d pill %d", shared.ErrNotFound, setIndex, pillIndex)
	}

	m.snapshot()
	applyUpdate(&m.doc[setIndex][pillIndex], update)
	m.notify()
	return nil
}

// UpdatePillsByID applies partial updates keyed by pill identity token as
// one mutation: one undo snapshot, one change notification for the whole
// batch. Updates whose pill no longer exists in the current document are
// discarded; if none apply, the document and history are untouched.
func (m *Manager) UpdatePillsByID(updates map[string]PillUpdate) int {
	applicable := 0
	for id := range updates {
		if _, ok := m.FindPillByID(id); ok {
			applicable++
		}
	}
	if applicable == 0 {
		return 0
	}

	m.snapshot()
	for i := range m.doc {
		for j := range m.doc[i] {
			if update, ok := updates[m.doc[i][j].ID]; ok {
				applyUpdate(&m.doc[i][j], update)
			}
		}
	}
	m.notify()
	return applicable
}

// applyUpdate copies the non-nil fields of update into pill.
func applyUpdate(pill *models.TunePill, update PillUpdate) {
	if update.TuneID != nil {
		pill.TuneID = *update.TuneID
	}
	if update.TuneName != nil {
		pill.TuneName = *update.TuneName
	}
	if update.Setting != nil {
		pill.Setting = *update.Setting
	}
	if update.TuneType != nil {
		pill.TuneType = *update.TuneType
	}
	if update.State != nil {
		pill.State = *update.State
	}
}

// Undo restores the most recent undo snapshot. The displaced document moves
// to the redo stack.
func (m *Manager) Undo() error {
	if len(m.undo) == 0 {
		return shared.ErrNothingToUndo
	}

	m.redo = append(m.redo, m.doc.Clone())
	last := len(m.undo) - 1
	m.doc = m.undo[last]
	m.undo = m.undo[:last]
	m.notify()
	return nil
}

// Redo reverses the most recent Undo. Any new mutation clears the redo
// stack; history never branches.
func (m *Manager) Redo() error {
	if len(m.redo) == 0 {
		return shared.ErrNothingToRedo
	}

	m.undo = append(m.undo, m.doc.Clone())
	last := len(m.redo) - 1
	m.doc = m.redo[last]
	m.redo = m.redo[:last]
	m.notify()
	return nil
}

// UndoDepth returns the number of recoverable undo states.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth returns the number of recoverable redo states.
func (m *Manager) RedoDepth() int { return len(m.redo) }

// FindPillByID locates a pill by its process-local identity token.
func (m *Manager) FindPillByID(id string) (PillRef, bool) {
	for i, set := range m.doc {
		for j, pill := range set {
			if pill.ID == id {
				return PillRef{SetIndex: i, PillIndex: j, Pill: pill}, true
			}
		}
	}
	return PillRef{}, false
}

// snapshot pushes the pre-mutation document onto the undo stack, evicting
// the oldest entry at capacity, and clears the redo stack.
func (m *Manager) snapshot() {
	if len(m.undo) >= m.depth {
		n := copy(m.undo, m.undo[len(m.undo)-m.depth+1:])
		m.undo = m.undo[:n]
	}
	m.undo = append(m.undo, m.doc.Clone())
	m.redo = nil
}

// notify fires the change callback once, after the mutation is fully applied.
// The callback receives its own copy; holding it across later mutations is safe.
func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.doc.Clone())
	}
}

// pillFromRaw builds an editor pill from a persisted tuple, assigning a
// fresh process-local identity token.
func pillFromRaw(raw models.RawTune) models.TunePill {
	state := models.StateUnlinked
	if raw.TuneID != "" {
		state = models.StateLinked
	}
	return models.TunePill{
		ID:          shared.GenerateID(),
		OrderNumber: raw.OrderNumber,
		TuneID:      raw.TuneID,
		TuneName:    raw.TuneName,
		Setting:     raw.Setting,
		TuneType:    raw.TuneType,
		State:       state,
	}
}
