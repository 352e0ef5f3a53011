package clipboard

import (
	"encoding/json"
	"strings"

	"github.com/seisiun/tunelog/internal/models"
)

// ParseKind classifies what a clipboard text turned out to be.
type ParseKind int

const (
	ParsedEmpty      ParseKind = iota // Nothing usable on the clipboard
	ParsedStructured                  // This system's own serialized payload
	ParsedPlainText                   // Arbitrary text, needs matching
)

func (k ParseKind) String() string {
	switch k {
	case ParsedEmpty:
		return "empty"
	case ParsedStructured:
		return "structured"
	case ParsedPlainText:
		return "plain_text"
	default:
		return ""
	}
}

// ParseResult is the typed outcome of interpreting clipboard text. Malformed
// structured payloads fall back to plain text; they are never an error.
type ParseResult struct {
	Kind ParseKind
	Sets []models.TuneSet
}

// payloadPill is the wire shape of one pill in the structured clipboard
// payload. Local-only fields (identity token, resolution state) are omitted;
// pills on a payload are already resolved and skip matching on paste.
type payloadPill struct {
	TuneID   string `json:"tune_id,omitempty"`
	TuneName string `json:"tune_name"`
	Setting  string `json:"setting,omitempty"`
	TuneType string `json:"tune_type,omitempty"`
}

// MarshalPayload serializes tune sets into the structured clipboard payload,
// an ordered-sets JSON shape.
func MarshalPayload(sets []models.TuneSet) (string, error) {
	out := make([][]payloadPill, len(sets))
	for i, set := range sets {
		out[i] = make([]payloadPill, len(set))
		for j, pill := range set {
			out[i][j] = payloadPill{
				TuneID:   pill.TuneID,
				TuneName: pill.TuneName,
				Setting:  pill.Setting,
				TuneType: pill.TuneType,
			}
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseText interprets clipboard text.
//
// Text that parses as the ordered-sets JSON shape is used verbatim as a
// structured payload. Anything else is treated as plain text: line breaks
// separate sets, commas separate pill names, and each pill starts in the
// loading state with no tune reference. Whitespace-only text is empty.
func ParseText(text string) ParseResult {
	if strings.TrimSpace(text) == "" {
		return ParseResult{Kind: ParsedEmpty}
	}

	if sets, ok := parseStructured(text); ok {
		if len(sets) == 0 {
			return ParseResult{Kind: ParsedEmpty}
		}
		return ParseResult{Kind: ParsedStructured, Sets: sets}
	}

	sets := parsePlainText(text)
	if len(sets) == 0 {
		return ParseResult{Kind: ParsedEmpty}
	}
	return ParseResult{Kind: ParsedPlainText, Sets: sets}
}

// parseStructured attempts to decode text as the ordered-sets payload shape.
// Any shape violation reports failure so the caller falls back to plain text.
func parseStructured(text string) ([]models.TuneSet, bool) {
	var payload [][]payloadPill
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, false
	}

	sets := make([]models.TuneSet, 0, len(payload))
	for _, rawSet := range payload {
		if len(rawSet) == 0 {
			return nil, false
		}
		set := make(models.TuneSet, 0, len(rawSet))
		for _, raw := range rawSet {
			if raw.TuneName == "" {
				return nil, false
			}
			state := models.StateUnlinked
			if raw.TuneID != "" {
				state = models.StateLinked
			}
			set = append(set, models.TunePill{
				TuneID:   raw.TuneID,
				TuneName: raw.TuneName,
				Setting:  raw.Setting,
				TuneType: raw.TuneType,
				State:    state,
			})
		}
		sets = append(sets, set)
	}
	return sets, true
}

// parsePlainText splits free text on line breaks into sets and on commas
// into pill names, constructing loading placeholders.
func parsePlainText(text string) []models.TuneSet {
	var sets []models.TuneSet
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		var set models.TuneSet
		for _, name := range strings.Split(line, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			set = append(set, models.TunePill{
				TuneName: name,
				State:    models.StateLoading,
			})
		}
		if len(set) > 0 {
			sets = append(sets, set)
		}
	}
	return sets
}
