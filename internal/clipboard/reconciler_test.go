package clipboard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/seisiun/tunelog/internal/document"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/services"
	"github.com/seisiun/tunelog/internal/shared"
	tunetest "github.com/seisiun/tunelog/internal/testing"
)

type mockSelection struct {
	sets []models.TuneSet
	ok   bool
}

func (m *mockSelection) Selected() ([]models.TuneSet, bool) { return m.sets, m.ok }

type mockCursor struct {
	pos models.Position
	ok  bool
}

func (m *mockCursor) Position() (models.Position, bool) { return m.pos, m.ok }

type capturedNotices struct {
	messages []string
}

func (c *capturedNotices) Notify(message string) { c.messages = append(c.messages, message) }

// fixture wires a reconciler over a five-pill single-set document.
type fixture struct {
	manager   *document.Manager
	selection *mockSelection
	cursor    *mockCursor
	board     *tunetest.FakeClipboard
	matcher   *tunetest.MockMatcher
	notices   *capturedNotices
	renders   *int
	rec       *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	renders := 0
	manager := document.NewManager(document.Opts{
		OnChange: func(models.Document) { renders++ },
	})
	manager.Load([]models.RawTune{
		{OrderNumber: 1, TuneName: "a", TuneID: "ta"},
		{OrderNumber: 2, ContinuesSet: true, TuneName: "b", TuneID: "tb"},
		{OrderNumber: 3, ContinuesSet: true, TuneName: "c", TuneID: "tc"},
		{OrderNumber: 4, ContinuesSet: true, TuneName: "d", TuneID: "td"},
		{OrderNumber: 5, ContinuesSet: true, TuneName: "e", TuneID: "te"},
	})
	renders = 0

	f := &fixture{
		manager:   manager,
		selection: &mockSelection{},
		cursor:    &mockCursor{},
		board:     &tunetest.FakeClipboard{},
		matcher:   &tunetest.MockMatcher{Results: map[string]*services.Match{}},
		notices:   &capturedNotices{},
		renders:   &renders,
	}
	f.rec = NewReconciler(Opts{
		Manager:   manager,
		Selection: f.selection,
		Cursor:    f.cursor,
		Board:     f.board,
		Matcher:   f.matcher,
		Notifier:  f.notices,
	})
	return f
}

func (f *fixture) selectAll() {
	f.selection.sets = f.manager.Document()
	f.selection.ok = true
}

func TestCopy(t *testing.T) {
	t.Run("writes structured payload and caches", func(t *testing.T) {
		f := newFixture(t)
		f.selectAll()

		if err := f.rec.Copy(); err != nil {
			t.Fatal(err)
		}

		parsed := ParseText(f.board.Text)
		if parsed.Kind != ParsedStructured {
			t.Fatalf("OS clipboard holds %v, want structured payload", parsed.Kind)
		}
		if len(f.rec.cache) != 1 || len(f.rec.cache[0]) != 5 {
			t.Errorf("internal cache shape = %v", shape(models.Document(f.rec.cache)))
		}
		if *f.renders != 0 {
			t.Errorf("copy mutated the document (%d renders)", *f.renders)
		}
	})

	t.Run("empty selection is a reported no-op", func(t *testing.T) {
		f := newFixture(t)

		if err := f.rec.Copy(); !errors.Is(err, shared.ErrEmptySelection) {
			t.Fatalf("Copy() = %v, want %v", err, shared.ErrEmptySelection)
		}
		if len(f.notices.messages) == 0 {
			t.Error("empty selection produced no notification")
		}
		if f.manager.UndoDepth() != 0 {
			t.Error("no-op copy recorded history")
		}
	})
}

func TestCut(t *testing.T) {
	f := newFixture(t)
	doc := f.manager.Document()
	// Select the middle pill only.
	f.selection.sets = []models.TuneSet{{doc[0][2]}}
	f.selection.ok = true

	if err := f.rec.Cut(); err != nil {
		t.Fatal(err)
	}

	got := shape(f.manager.Document())
	if !reflect.DeepEqual(got, [][]string{{"a", "b", "d", "e"}}) {
		t.Errorf("cut result = %v", got)
	}
	if f.manager.UndoDepth() != 1 {
		t.Errorf("cut recorded %d undo steps, want 1", f.manager.UndoDepth())
	}

	if err := f.manager.Undo(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(shape(f.manager.Document()), [][]string{{"a", "b", "c", "d", "e"}}) {
		t.Errorf("undo did not restore cut batch: %v", shape(f.manager.Document()))
	}
}

func TestCutDropsEmptiedSets(t *testing.T) {
	f := newFixture(t)
	f.selectAll()

	if err := f.rec.Cut(); err != nil {
		t.Fatal(err)
	}

	if f.manager.SetCount() != 0 {
		t.Errorf("cutting everything left %d sets", f.manager.SetCount())
	}
	for _, set := range f.manager.Document() {
		if len(set) == 0 {
			t.Error("cut left an empty set behind")
		}
	}
}

func TestPasteStructured(t *testing.T) {
	t.Run("copy then paste yields fresh identities", func(t *testing.T) {
		f := newFixture(t)
		f.selectAll()
		if err := f.rec.Copy(); err != nil {
			t.Fatal(err)
		}

		originalIDs := map[string]struct{}{}
		for _, set := range f.manager.Document() {
			for _, pill := range set {
				originalIDs[pill.ID] = struct{}{}
			}
		}

		f.cursor.ok = false
		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		doc := f.manager.Document()
		if doc.PillCount() != 10 {
			t.Fatalf("PillCount = %d, want 10", doc.PillCount())
		}

		pasted := doc[1]
		for i, pill := range pasted {
			orig := doc[0][i]
			if pill.TuneName != orig.TuneName || pill.TuneID != orig.TuneID {
				t.Errorf("pasted pill %d fields differ: %+v vs %+v", i, pill, orig)
			}
			if _, dup := originalIDs[pill.ID]; dup || pill.ID == "" {
				t.Errorf("pasted pill %d reused identity %q", i, pill.ID)
			}
		}
	})

	t.Run("two-set payload splits the target set", func(t *testing.T) {
		f := newFixture(t)
		payload, err := MarshalPayload([]models.TuneSet{set("p"), set("q")})
		if err != nil {
			t.Fatal(err)
		}
		f.board.Text = payload
		f.cursor.pos = models.Position{SetIndex: 0, PillIndex: 2, Relation: models.Before}
		f.cursor.ok = true

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		got := shape(f.manager.Document())
		want := [][]string{{"a", "b"}, {"p"}, {"q"}, {"c", "d", "e"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("paste result = %v, want %v", got, want)
		}
		if f.manager.PillCount() != 5+2 {
			t.Errorf("PillCount = %d, want 7", f.manager.PillCount())
		}
	})

	t.Run("confirms immediately with literal counts", func(t *testing.T) {
		f := newFixture(t)
		payload, _ := MarshalPayload([]models.TuneSet{set("p", "q"), set("r")})
		f.board.Text = payload

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		want := "Pasted 3 tune(s) in 2 set(s)"
		if len(f.notices.messages) != 1 || f.notices.messages[0] != want {
			t.Errorf("notices = %v, want [%s]", f.notices.messages, want)
		}
		if len(f.matcher.Calls()) != 0 {
			t.Errorf("structured paste called the matcher: %v", f.matcher.Calls())
		}
	})

	t.Run("one undo step per paste", func(t *testing.T) {
		f := newFixture(t)
		payload, _ := MarshalPayload([]models.TuneSet{set("p")})
		f.board.Text = payload

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}
		if f.manager.UndoDepth() != 1 {
			t.Fatalf("paste recorded %d undo steps, want 1", f.manager.UndoDepth())
		}

		if err := f.manager.Undo(); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(shape(f.manager.Document()), [][]string{{"a", "b", "c", "d", "e"}}) {
			t.Errorf("undo did not restore pre-paste document: %v", shape(f.manager.Document()))
		}
	})
}

func TestPastePlainText(t *testing.T) {
	t.Run("builds loading placeholders then reconciles", func(t *testing.T) {
		f := newFixture(t)
		f.board.Text = "Tune A, Tune B\nTune C"
		f.matcher.Results["tune a"] = &services.Match{TuneID: "ta9", Setting: "2", TuneType: "reel"}
		f.matcher.Results["tune c"] = &services.Match{TuneID: "tc9", TuneType: "jig"}

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		doc := f.manager.Document()
		got := shape(doc)
		want := [][]string{{"a", "b", "c", "d", "e"}, {"Tune A", "Tune B"}, {"Tune C"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("paste result = %v, want %v", got, want)
		}

		if pill := doc[1][0]; pill.State != models.StateLinked || pill.TuneID != "ta9" || pill.TuneType != "reel" {
			t.Errorf("matched pill = %+v", pill)
		}
		if pill := doc[1][1]; pill.State != models.StateUnlinked || pill.TuneID != "" {
			t.Errorf("unmatched pill = %+v", pill)
		}
		if pill := doc[2][0]; pill.State != models.StateLinked || pill.TuneID != "tc9" {
			t.Errorf("matched pill = %+v", pill)
		}
	})

	t.Run("one render for the splice and one for the settled batch", func(t *testing.T) {
		f := newFixture(t)
		f.board.Text = "Tune A, Tune B, Tune C, Tune D"

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		if *f.renders != 2 {
			t.Errorf("paste fired %d renders, want 2 (splice + batch)", *f.renders)
		}
	})

	t.Run("defers confirmation until the batch settles", func(t *testing.T) {
		f := newFixture(t)
		f.board.Text = "Tune A\nTune B"
		f.matcher.Results["tune a"] = &services.Match{TuneID: "ta9"}

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		want := "Pasted 2 tune(s) in 2 set(s), 1 matched"
		if len(f.notices.messages) != 1 || f.notices.messages[0] != want {
			t.Errorf("notices = %v, want [%s]", f.notices.messages, want)
		}
	})

	t.Run("matcher outage leaves every pill unlinked", func(t *testing.T) {
		f := newFixture(t)
		f.board.Text = "Tune A, Tune B"
		f.matcher.Err = shared.ErrServiceUnavailable

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		for _, pill := range f.manager.Document()[1] {
			if pill.State != models.StateUnlinked {
				t.Errorf("pill %q state = %v, want unlinked", pill.TuneName, pill.State)
			}
		}
	})
}

func TestPasteFallbacks(t *testing.T) {
	t.Run("unreadable OS clipboard falls back to the cache", func(t *testing.T) {
		f := newFixture(t)
		f.selectAll()
		if err := f.rec.Copy(); err != nil {
			t.Fatal(err)
		}
		f.board.ReadErr = errors.New("denied")

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}
		if f.manager.PillCount() != 10 {
			t.Errorf("fallback paste PillCount = %d, want 10", f.manager.PillCount())
		}
	})

	t.Run("nothing anywhere is an empty-clipboard error", func(t *testing.T) {
		f := newFixture(t)

		err := f.rec.Paste(context.Background())
		if !errors.Is(err, shared.ErrEmptyClipboard) {
			t.Fatalf("Paste() = %v, want %v", err, shared.ErrEmptyClipboard)
		}
		if f.manager.UndoDepth() != 0 || *f.renders != 0 {
			t.Error("empty paste touched the document")
		}
	})

	t.Run("no cursor targets a new set at the end", func(t *testing.T) {
		f := newFixture(t)
		f.board.Text = `[[{"tune_id":"tp","tune_name":"p"}]]`
		f.cursor.ok = false

		if err := f.rec.Paste(context.Background()); err != nil {
			t.Fatal(err)
		}

		got := shape(f.manager.Document())
		want := [][]string{{"a", "b", "c", "d", "e"}, {"p"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("paste result = %v, want %v", got, want)
		}
	})
}
