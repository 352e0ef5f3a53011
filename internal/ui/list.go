package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/seisiun/tunelog/internal/models"
)

var (
	_ list.Item = setItem{}
	_ list.Item = pillItem{}
)

// setItem wraps one [models.TuneSet] to implement [list.Item].
type setItem struct {
	index int
	set   models.TuneSet
}

func (i setItem) FilterValue() string {
	names := make([]string, len(i.set))
	for j, pill := range i.set {
		names[j] = pill.TuneName
	}
	return strings.Join(names, " ")
}

func (i setItem) Title() string {
	return fmt.Sprintf("Set %d", i.index+1)
}

func (i setItem) Description() string {
	names := make([]string, len(i.set))
	for j, pill := range i.set {
		names[j] = pill.TuneName
	}
	return strings.Join(names, " / ")
}

// pillItem wraps one [models.TunePill] to implement [list.Item].
type pillItem struct {
	pill models.TunePill
}

func (i pillItem) FilterValue() string { return i.pill.TuneName }

func (i pillItem) Title() string {
	switch i.pill.State {
	case models.StateLoading:
		return fmt.Sprintf("%s …", i.pill.TuneName)
	case models.StateUnlinked:
		return fmt.Sprintf("%s ?", i.pill.TuneName)
	default:
		return i.pill.TuneName
	}
}

func (i pillItem) Description() string {
	parts := []string{}
	if i.pill.TuneType != "" {
		parts = append(parts, i.pill.TuneType)
	}
	if i.pill.Setting != "" {
		parts = append(parts, fmt.Sprintf("setting %s", i.pill.Setting))
	}
	parts = append(parts, i.pill.State.String())
	return strings.Join(parts, " • ")
}
