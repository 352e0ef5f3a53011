package document

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/shared"
)

func loadedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(Opts{})
	m.Load([]models.RawTune{
		{OrderNumber: 1, ContinuesSet: false, TuneID: "t1", TuneName: "The Banshee", TuneType: "reel"},
		{OrderNumber: 2, ContinuesSet: true, TuneID: "t2", TuneName: "The Silver Spear", TuneType: "reel"},
		{OrderNumber: 3, ContinuesSet: false, TuneName: "Out on the Ocean", TuneType: "jig"},
	})
	return m
}

func names(doc models.Document) [][]string {
	out := make([][]string, len(doc))
	for i, set := range doc {
		for _, pill := range set {
			out[i] = append(out[i], pill.TuneName)
		}
	}
	return out
}

func TestLoad(t *testing.T) {
	tc := []struct {
		name string
		raws []models.RawTune
		want [][]string
	}{
		{
			name: "empty",
			raws: nil,
			want: [][]string{},
		},
		{
			name: "grouping on continues_set",
			raws: []models.RawTune{
				{OrderNumber: 1, TuneName: "A"},
				{OrderNumber: 2, ContinuesSet: true, TuneName: "B"},
				{OrderNumber: 3, TuneName: "C"},
				{OrderNumber: 4, ContinuesSet: true, TuneName: "D"},
				{OrderNumber: 5, ContinuesSet: true, TuneName: "E"},
			},
			want: [][]string{{"A", "B"}, {"C", "D", "E"}},
		},
		{
			name: "leading continues_set starts a set",
			raws: []models.RawTune{
				{OrderNumber: 1, ContinuesSet: true, TuneName: "A"},
				{OrderNumber: 2, ContinuesSet: true, TuneName: "B"},
			},
			want: [][]string{{"A", "B"}},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(Opts{})
			m.Load(tt.raws)

			got := names(m.Document())
			if len(got) != len(tt.want) {
				t.Fatalf("Load() sets = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !reflect.DeepEqual(got[i], tt.want[i]) {
					t.Errorf("Load() set %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("clears history", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemoveSet(0); err != nil {
			t.Fatal(err)
		}

		m.Load([]models.RawTune{{OrderNumber: 1, TuneName: "A"}})
		if m.UndoDepth() != 0 || m.RedoDepth() != 0 {
			t.Errorf("Load left history: undo %d, redo %d", m.UndoDepth(), m.RedoDepth())
		}
		if err := m.Undo(); !errors.Is(err, shared.ErrNothingToUndo) {
			t.Errorf("Undo after Load = %v, want %v", err, shared.ErrNothingToUndo)
		}
	})

	t.Run("assigns states from tune IDs", func(t *testing.T) {
		m := loadedManager(t)
		doc := m.Document()
		if doc[0][0].State != models.StateLinked {
			t.Errorf("pill with tune ID loaded as %v, want linked", doc[0][0].State)
		}
		if doc[1][0].State != models.StateUnlinked {
			t.Errorf("pill without tune ID loaded as %v, want unlinked", doc[1][0].State)
		}
	})
}

func TestMutationPrimitives(t *testing.T) {
	t.Run("AddSet at boundary", func(t *testing.T) {
		m := loadedManager(t)
		err := m.AddSet(1, models.TuneSet{{TuneName: "Morrison's", TuneType: "jig"}})
		if err != nil {
			t.Fatal(err)
		}

		got := names(m.Document())
		want := [][]string{{"The Banshee", "The Silver Spear"}, {"Morrison's"}, {"Out on the Ocean"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AddSet result = %v, want %v", got, want)
		}
	})

	t.Run("AddSet rejects empty set", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.AddSet(0, models.TuneSet{}); !errors.Is(err, shared.ErrEmptySet) {
			t.Errorf("AddSet(empty) = %v, want %v", err, shared.ErrEmptySet)
		}
		if m.UndoDepth() != 0 {
			t.Error("rejected AddSet recorded an undo snapshot")
		}
	})

	t.Run("AddPill inserts at index", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.AddPill(0, 1, models.TunePill{TuneName: "Maid Behind the Bar"}); err != nil {
			t.Fatal(err)
		}

		got := names(m.Document())[0]
		want := []string{"The Banshee", "Maid Behind the Bar", "The Silver Spear"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AddPill result = %v, want %v", got, want)
		}
	})

	t.Run("AddPill appends on negative index", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.AddPill(0, -1, models.TunePill{TuneName: "Last"}); err != nil {
			t.Fatal(err)
		}

		set := m.Document()[0]
		if set[len(set)-1].TuneName != "Last" {
			t.Errorf("AddPill(-1) did not append, set = %v", names(m.Document())[0])
		}
	})

	t.Run("AddPill assigns a fresh identity", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.AddPill(0, 0, models.TunePill{TuneName: "New"}); err != nil {
			t.Fatal(err)
		}
		if m.Document()[0][0].ID == "" {
			t.Error("inserted pill has no identity token")
		}
	})

	t.Run("RemovePill keeps non-empty set", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemovePill(0, 0); err != nil {
			t.Fatal(err)
		}

		got := names(m.Document())
		want := [][]string{{"The Silver Spear"}, {"Out on the Ocean"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("RemovePill result = %v, want %v", got, want)
		}
	})

	t.Run("RemovePill removes emptied set", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemovePill(1, 0); err != nil {
			t.Fatal(err)
		}

		doc := m.Document()
		if doc.SetCount() != 1 {
			t.Fatalf("emptied set survived: %v", names(doc))
		}
		for _, set := range doc {
			if len(set) == 0 {
				t.Fatal("document contains an empty set")
			}
		}
	})

	t.Run("UpdatePill applies partial fields", func(t *testing.T) {
		m := loadedManager(t)
		tuneID := "t9"
		state := models.StateLinked
		err := m.UpdatePill(1, 0, PillUpdate{TuneID: &tuneID, State: &state})
		if err != nil {
			t.Fatal(err)
		}

		pill := m.Document()[1][0]
		if pill.TuneID != "t9" || pill.State != models.StateLinked {
			t.Errorf("UpdatePill result = %+v", pill)
		}
		if pill.TuneName != "Out on the Ocean" {
			t.Errorf("UpdatePill clobbered untouched field: %q", pill.TuneName)
		}
	})

	t.Run("out of range indices are rejected", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemoveSet(5); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("RemoveSet(5) = %v, want %v", err, shared.ErrNotFound)
		}
		if err := m.RemovePill(0, 9); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("RemovePill(0, 9) = %v, want %v", err, shared.ErrNotFound)
		}
		if err := m.AddPill(9, 0, models.TunePill{TuneName: "X"}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("AddPill(9, ...) = %v, want %v", err, shared.ErrNotFound)
		}
		if m.UndoDepth() != 0 {
			t.Error("rejected mutations recorded undo snapshots")
		}
	})
}

func TestUndoRedo(t *testing.T) {
	t.Run("undo then redo restores the pre-undo document", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemovePill(0, 0); err != nil {
			t.Fatal(err)
		}
		if err := m.AddSet(-1, models.TuneSet{{TuneName: "Cooley's"}}); err != nil {
			t.Fatal(err)
		}

		before := m.Document()
		if err := m.Undo(); err != nil {
			t.Fatal(err)
		}
		if err := m.Redo(); err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(m.Document(), before) {
			t.Errorf("undo/redo round trip changed document:\n got %v\nwant %v",
				names(m.Document()), names(before))
		}
	})

	t.Run("undo restores removed pill", func(t *testing.T) {
		m := loadedManager(t)
		original := m.Document()

		if err := m.RemovePill(0, 1); err != nil {
			t.Fatal(err)
		}
		if err := m.Undo(); err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(m.Document(), original) {
			t.Errorf("undo did not restore document: %v", names(m.Document()))
		}
	})

	t.Run("empty stacks fail", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.Undo(); !errors.Is(err, shared.ErrNothingToUndo) {
			t.Errorf("Undo() = %v, want %v", err, shared.ErrNothingToUndo)
		}
		if err := m.Redo(); !errors.Is(err, shared.ErrNothingToRedo) {
			t.Errorf("Redo() = %v, want %v", err, shared.ErrNothingToRedo)
		}
	})

	t.Run("new mutation clears redo", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.RemoveSet(0); err != nil {
			t.Fatal(err)
		}
		if err := m.Undo(); err != nil {
			t.Fatal(err)
		}
		if m.RedoDepth() != 1 {
			t.Fatalf("RedoDepth = %d, want 1", m.RedoDepth())
		}

		if err := m.AddPill(0, 0, models.TunePill{TuneName: "New"}); err != nil {
			t.Fatal(err)
		}
		if err := m.Redo(); !errors.Is(err, shared.ErrNothingToRedo) {
			t.Errorf("Redo after mutation = %v, want %v", err, shared.ErrNothingToRedo)
		}
	})

	t.Run("sixty mutations leave fifty undo states", func(t *testing.T) {
		m := loadedManager(t)
		for i := 0; i < 60; i++ {
			if err := m.AddPill(0, -1, models.TunePill{TuneName: fmt.Sprintf("Tune %d", i)}); err != nil {
				t.Fatal(err)
			}
		}

		if m.UndoDepth() != 50 {
			t.Fatalf("UndoDepth = %d, want 50", m.UndoDepth())
		}

		undone := 0
		for m.Undo() == nil {
			undone++
		}
		if undone != 50 {
			t.Errorf("recovered %d undo states, want 50", undone)
		}

		// The oldest recoverable state is 10 mutations in, not the loaded one.
		set := m.Document()[0]
		if got := len(set); got != 2+10 {
			t.Errorf("oldest recoverable state has %d pills in set 0, want 12", got)
		}
	})
}

func TestImportExportSnapshot(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		m := loadedManager(t)
		snap := m.ExportSnapshot()

		other := NewManager(Opts{})
		if err := other.ImportSnapshot(snap); err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(names(other.Document()), names(m.Document())) {
			t.Errorf("imported snapshot differs: %v", names(other.Document()))
		}
	})

	t.Run("import is undoable", func(t *testing.T) {
		m := loadedManager(t)
		if err := m.ImportSnapshot(models.Document{{models.TunePill{ID: "x", TuneName: "Only"}}}); err != nil {
			t.Fatal(err)
		}
		if m.SetCount() != 1 {
			t.Fatalf("import did not replace document")
		}

		if err := m.Undo(); err != nil {
			t.Fatal(err)
		}
		if m.SetCount() != 2 {
			t.Errorf("undo after import left %d sets, want 2", m.SetCount())
		}
	})

	t.Run("import rejects empty sets", func(t *testing.T) {
		m := loadedManager(t)
		err := m.ImportSnapshot(models.Document{models.TuneSet{}})
		if !errors.Is(err, shared.ErrEmptySet) {
			t.Errorf("ImportSnapshot(empty set) = %v, want %v", err, shared.ErrEmptySet)
		}
	})
}

func TestExportRaw(t *testing.T) {
	m := loadedManager(t)
	raws := m.ExportRaw()

	want := []models.RawTune{
		{OrderNumber: 1, ContinuesSet: false, TuneID: "t1", TuneName: "The Banshee", TuneType: "reel"},
		{OrderNumber: 2, ContinuesSet: true, TuneID: "t2", TuneName: "The Silver Spear", TuneType: "reel"},
		{OrderNumber: 3, ContinuesSet: false, TuneName: "Out on the Ocean", TuneType: "jig"},
	}
	if !reflect.DeepEqual(raws, want) {
		t.Errorf("ExportRaw() = %+v, want %+v", raws, want)
	}
}

func TestFindPillByID(t *testing.T) {
	m := loadedManager(t)
	target := m.Document()[1][0]

	ref, ok := m.FindPillByID(target.ID)
	if !ok {
		t.Fatal("FindPillByID missed an existing pill")
	}
	if ref.SetIndex != 1 || ref.PillIndex != 0 || ref.Pill.TuneName != "Out on the Ocean" {
		t.Errorf("FindPillByID = %+v", ref)
	}

	if _, ok := m.FindPillByID("missing"); ok {
		t.Error("FindPillByID found a pill for an unknown ID")
	}
}

func TestUpdatePillsByID(t *testing.T) {
	t.Run("batch applies as one mutation", func(t *testing.T) {
		m := loadedManager(t)
		doc := m.Document()
		linked := models.StateLinked
		tuneID := "t7"

		applied := m.UpdatePillsByID(map[string]PillUpdate{
			doc[1][0].ID: {TuneID: &tuneID, State: &linked},
			doc[0][1].ID: {State: &linked},
		})
		if applied != 2 {
			t.Fatalf("applied = %d, want 2", applied)
		}
		if m.UndoDepth() != 1 {
			t.Errorf("batch recorded %d undo snapshots, want 1", m.UndoDepth())
		}
		if got := m.Document()[1][0]; got.TuneID != "t7" || got.State != models.StateLinked {
			t.Errorf("batch update not applied: %+v", got)
		}
	})

	t.Run("stale IDs are discarded", func(t *testing.T) {
		m := loadedManager(t)
		linked := models.StateLinked

		applied := m.UpdatePillsByID(map[string]PillUpdate{
			"long-gone": {State: &linked},
		})
		if applied != 0 {
			t.Fatalf("applied = %d, want 0", applied)
		}
		if m.UndoDepth() != 0 {
			t.Error("no-op batch recorded an undo snapshot")
		}
	})
}

func TestChangeNotification(t *testing.T) {
	var calls int
	m := NewManager(Opts{OnChange: func(models.Document) { calls++ }})

	m.Load([]models.RawTune{{OrderNumber: 1, TuneName: "A"}})
	if err := m.AddPill(0, -1, models.TunePill{TuneName: "B"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := m.Redo(); err != nil {
		t.Fatal(err)
	}

	if calls != 4 {
		t.Errorf("change callback fired %d times, want 4", calls)
	}

	// Rejected mutations must not notify.
	if err := m.RemoveSet(9); err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("rejected mutation fired the callback")
	}
}
