package clipboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/seisiun/tunelog/internal/document"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/services"
	"github.com/seisiun/tunelog/internal/shared"
)

// Selection is the external selection collaborator.
type Selection interface {
	// Selected returns the selected pills grouped into ordered sets, or
	// false when nothing is selected.
	Selected() ([]models.TuneSet, bool)
}

// Cursor is the external cursor collaborator.
type Cursor interface {
	// Position returns the active caret position, or false when no cursor
	// is active.
	Position() (models.Position, bool)
}

// Board abstracts the OS text clipboard. Reads may legitimately fail (user
// permission, IPC); the reconciler falls back to its internal cache.
type Board interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Notifier receives user-facing confirmations and transient notices.
type Notifier interface {
	Notify(message string)
}

// NotifyFunc adapts a function to the Notifier interface.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

// defaultConcurrency bounds the parallel match calls of one paste batch.
const defaultConcurrency = 4

// Opts contains configuration options for creating a Reconciler.
type Opts struct {
	Manager     *document.Manager
	Selection   Selection
	Cursor      Cursor
	Board       Board
	Matcher     services.Matcher
	Notifier    Notifier
	Concurrency int
	Logger      *log.Logger
}

// Reconciler implements copy, cut and paste over one document manager.
type Reconciler struct {
	manager     *document.Manager
	selection   Selection
	cursor      Cursor
	board       Board
	matcher     services.Matcher
	notifier    Notifier
	concurrency int
	logger      *log.Logger

	// cache is the last-known internal clipboard, used when the OS
	// clipboard is empty or unreadable.
	cache []models.TuneSet
}

// NewReconciler creates a Reconciler wired to the given collaborators.
func NewReconciler(opts Opts) *Reconciler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Reconciler{
		manager:     opts.Manager,
		selection:   opts.Selection,
		cursor:      opts.Cursor,
		board:       opts.Board,
		matcher:     opts.Matcher,
		notifier:    opts.Notifier,
		concurrency: opts.Concurrency,
		logger:      shared.WithLogger(opts.Logger, "component", "clipboard"),
	}
}

// Copy extracts the current selection, caches it as the internal clipboard
// and writes the structured payload to the OS clipboard. An empty selection
// is a no-op reported through the notifier.
func (r *Reconciler) Copy() error {
	sets, ok := r.extractSelection()
	if !ok {
		return shared.ErrEmptySelection
	}

	r.cache = cloneSets(sets)
	r.writeBoard(sets)
	r.notify(fmt.Sprintf("Copied %s in %s",
		shared.FormatCount(countPills(sets), "tune"), shared.FormatCount(len(sets), "set")))
	return nil
}

// Cut behaves like Copy and additionally removes the selected pills from the
// document as a single undo-recorded mutation. Sets emptied by the removal
// are dropped.
func (r *Reconciler) Cut() error {
	sets, ok := r.extractSelection()
	if !ok {
		return shared.ErrEmptySelection
	}

	r.cache = cloneSets(sets)
	r.writeBoard(sets)

	removed := make(map[string]struct{})
	for _, set := range sets {
		for _, pill := range set {
			if pill.ID != "" {
				removed[pill.ID] = struct{}{}
			}
		}
	}

	doc := r.manager.Document()
	out := make(models.Document, 0, len(doc))
	for _, set := range doc {
		kept := make(models.TuneSet, 0, len(set))
		for _, pill := range set {
			if _, gone := removed[pill.ID]; !gone {
				kept = append(kept, pill)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}

	if err := r.manager.ImportSnapshot(out); err != nil {
		return fmt.Errorf("cut failed: %w", err)
	}

	r.notify(fmt.Sprintf("Cut %s in %s",
		shared.FormatCount(countPills(sets), "tune"), shared.FormatCount(len(sets), "set")))
	return nil
}

// PasteBatch is a paste whose structural splice has already been applied and
// whose plain-text placeholders, if any, still await match resolution.
type PasteBatch struct {
	r       *Reconciler
	pills   int
	sets    int
	pending []pendingMatch
}

type pendingMatch struct {
	id   string
	name string
}

// Pending reports whether the batch still has unresolved placeholders.
func (b *PasteBatch) Pending() bool { return len(b.pending) > 0 }

// PasteResult holds the settled outcomes of one match batch. Resolving
// touches no document state; Apply commits the result.
type PasteResult struct {
	updates map[string]document.PillUpdate
	matched int
}

// Paste reads the OS clipboard (falling back to the internal cache), applies
// the structural splice and, for plain text, blocks until the whole match
// batch settles and is applied.
//
// Callers with their own event loop use PasteStaged directly so the document
// is only ever touched from that loop.
func (r *Reconciler) Paste(ctx context.Context) error {
	batch, err := r.PasteStaged()
	if err != nil {
		return err
	}
	if batch.Pending() {
		batch.Apply(batch.Resolve(ctx))
	}
	return nil
}

// PasteStaged resolves the target position from the cursor collaborator and
// applies the structural splice as exactly one undo-recorded mutation, on the
// calling goroutine.
//
// A structured payload confirms immediately and the returned batch has
// nothing pending. Plain text leaves loading placeholders in the document;
// the caller resolves the returned batch (safe off the event loop) and then
// applies it (back on the event loop) to settle and confirm them.
func (r *Reconciler) PasteStaged() (*PasteBatch, error) {
	result := r.readBoard()
	if result.Kind == ParsedEmpty {
		if len(r.cache) == 0 {
			return nil, shared.ErrEmptyClipboard
		}
		result = ParseResult{Kind: ParsedStructured, Sets: cloneSets(r.cache)}
	}

	// Every inserted pill gets a newly generated local identity, so pasting
	// the same payload twice can never alias pills.
	incoming := cloneSets(result.Sets)
	var pending []pendingMatch
	for i := range incoming {
		for j := range incoming[i] {
			incoming[i][j].ID = shared.GenerateID()
			if incoming[i][j].State == models.StateLoading {
				pending = append(pending, pendingMatch{
					id:   incoming[i][j].ID,
					name: incoming[i][j].TuneName,
				})
			}
		}
	}

	var (
		pos    models.Position
		active bool
	)
	if r.cursor != nil {
		pos, active = r.cursor.Position()
	}
	if !active {
		pos = models.Position{SetIndex: r.manager.SetCount(), Relation: models.NewSet}
	}

	doc := splice(r.manager.Document(), pos, incoming)
	if err := r.manager.ImportSnapshot(doc); err != nil {
		return nil, fmt.Errorf("paste failed: %w", err)
	}

	batch := &PasteBatch{
		r:       r,
		pills:   countPills(incoming),
		sets:    len(incoming),
		pending: pending,
	}
	if !batch.Pending() {
		r.notify(fmt.Sprintf("Pasted %d tune(s) in %d set(s)", batch.pills, batch.sets))
	}
	return batch, nil
}

// Resolve runs the batch's match calls, one concurrent call per placeholder.
// It never touches the document, so it may run concurrently with edits.
func (b *PasteBatch) Resolve(ctx context.Context) PasteResult {
	r := b.r
	results := make([]*services.Match, len(b.pending))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, p := range b.pending {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			match, err := r.matcher.Match(ctx, name)
			if err != nil {
				// A single failed match leaves its pill unlinked; it never
				// aborts the rest of the batch.
				r.logger.Debug("no match", "tune", name, "err", err)
				return
			}
			results[i] = match
		}(i, p.name)
	}

	wg.Wait()

	updates := make(map[string]document.PillUpdate, len(b.pending))
	matched := 0
	for i, p := range b.pending {
		state := models.StateUnlinked
		update := document.PillUpdate{State: &state}
		if match := results[i]; match != nil {
			matched++
			linked := models.StateLinked
			update = document.PillUpdate{
				TuneID:   &match.TuneID,
				Setting:  &match.Setting,
				TuneType: &match.TuneType,
				State:    &linked,
			}
		}
		updates[p.id] = update
	}

	return PasteResult{updates: updates, matched: matched}
}

// Apply commits the settled batch as one mutation and confirms. Late results
// for pills that no longer exist are discarded inside the batch application.
// Must run on the same goroutine as every other document mutation.
func (b *PasteBatch) Apply(res PasteResult) {
	applied := b.r.manager.UpdatePillsByID(res.updates)
	b.r.logger.Debug("paste batch settled",
		"pills", len(b.pending), "matched", res.matched, "applied", applied)
	b.r.notify(fmt.Sprintf("Pasted %d tune(s) in %d set(s), %d matched",
		b.pills, b.sets, res.matched))
}

// extractSelection pulls the selection, reporting empty ones via the notifier.
func (r *Reconciler) extractSelection() ([]models.TuneSet, bool) {
	if r.selection == nil {
		r.notify("Nothing selected")
		return nil, false
	}
	sets, ok := r.selection.Selected()
	if !ok || countPills(sets) == 0 {
		r.notify("Nothing selected")
		return nil, false
	}
	return sets, true
}

// readBoard reads and interprets the OS clipboard. Failures degrade to an
// empty result so the caller can fall back to the internal cache.
func (r *Reconciler) readBoard() ParseResult {
	if r.board == nil {
		return ParseResult{Kind: ParsedEmpty}
	}
	text, err := r.board.ReadText()
	if err != nil {
		r.logger.Debug("clipboard read failed", "err", err)
		return ParseResult{Kind: ParsedEmpty}
	}
	return ParseText(text)
}

// writeBoard publishes the structured payload to the OS clipboard. A write
// failure only costs cross-process paste; the internal cache still works.
func (r *Reconciler) writeBoard(sets []models.TuneSet) {
	if r.board == nil {
		return
	}
	payload, err := MarshalPayload(sets)
	if err != nil {
		r.logger.Warn("failed to serialize clipboard payload", "err", err)
		return
	}
	if err := r.board.WriteText(payload); err != nil {
		r.logger.Warn("clipboard write failed", "err", err)
	}
}

func (r *Reconciler) notify(message string) {
	if r.notifier != nil {
		r.notifier.Notify(message)
	}
}

func cloneSets(sets []models.TuneSet) []models.TuneSet {
	out := make([]models.TuneSet, len(sets))
	for i, set := range sets {
		cp := make(models.TuneSet, len(set))
		copy(cp, set)
		out[i] = cp
	}
	return out
}

func countPills(sets []models.TuneSet) int {
	n := 0
	for _, set := range sets {
		n += len(set)
	}
	return n
}
