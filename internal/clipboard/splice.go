package clipboard

import (
	"github.com/seisiun/tunelog/internal/models"
)

// splice inserts incoming sets into doc at pos and returns the new document.
//
// The rule table:
//   - newset targets insert the incoming sets whole at the boundary index;
//     later sets shift right.
//   - before/after a pill with one incoming set splices its pills directly
//     into the target set at the resolved index; no split.
//   - before/after a pill with multiple incoming sets splits the target set
//     at the resolved index into before/after remainders (omitting any empty
//     remainder) and splices the incoming sets between them.
//
// doc and incoming are not mutated; callers pass clones they own.
func splice(doc models.Document, pos models.Position, incoming []models.TuneSet) models.Document {
	if len(incoming) == 0 {
		return doc
	}

	if pos.Relation == models.NewSet || pos.SetIndex < 0 || pos.SetIndex >= len(doc) {
		at := pos.SetIndex
		if pos.Relation != models.NewSet || at < 0 || at > len(doc) {
			at = len(doc)
		}
		return insertSets(doc, at, incoming)
	}

	target := doc[pos.SetIndex]
	at := pos.PillIndex
	if pos.Relation == models.After {
		at++
	}
	if at < 0 {
		at = 0
	}
	if at > len(target) {
		at = len(target)
	}

	if len(incoming) == 1 {
		merged := make(models.TuneSet, 0, len(target)+len(incoming[0]))
		merged = append(merged, target[:at]...)
		merged = append(merged, incoming[0]...)
		merged = append(merged, target[at:]...)

		out := make(models.Document, len(doc))
		copy(out, doc)
		out[pos.SetIndex] = merged
		return out
	}

	// Split the target set around the insertion point.
	replacement := make([]models.TuneSet, 0, len(incoming)+2)
	if at > 0 {
		replacement = append(replacement, target[:at])
	}
	replacement = append(replacement, incoming...)
	if at < len(target) {
		replacement = append(replacement, target[at:])
	}

	out := make(models.Document, 0, len(doc)+len(replacement)-1)
	out = append(out, doc[:pos.SetIndex]...)
	out = append(out, replacement...)
	out = append(out, doc[pos.SetIndex+1:]...)
	return out
}

// insertSets places incoming whole sets at the given set boundary.
func insertSets(doc models.Document, at int, incoming []models.TuneSet) models.Document {
	out := make(models.Document, 0, len(doc)+len(incoming))
	out = append(out, doc[:at]...)
	out = append(out, incoming...)
	out = append(out, doc[at:]...)
	return out
}
