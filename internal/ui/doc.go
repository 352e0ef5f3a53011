// Package ui implements an interactive terminal tune-log editor using bubbletea's Elm architecture.
//
// The TUI provides a two-level editing workflow:
//  1. [SetListView] : Browse the session's tune sets
//  2. [PillListView] : Edit the pills inside one set
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. It doubles as the selection and cursor collaborator of the
// clipboard reconciler: the highlighted set or pill is what copy and cut
// operate on, and the paste target follows the highlight. Plain-text pastes
// run their match batch off the update loop and settle in a single message.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus the
// editing keys c/x/p/u/r/d, with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
