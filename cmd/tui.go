package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/seisiun/tunelog/internal/repositories"
	"github.com/seisiun/tunelog/internal/shared"
	"github.com/seisiun/tunelog/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal editor for a session's tune log.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := resolveSession(repositories.NewSessionRepository(db), cmd.StringArg("session"))
	if err != nil {
		return err
	}

	manager, err := r.loadSessionDocument(db, session)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunelog-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, manager, r.board, r.matcher, fileLogger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if cmd.Bool("no-save") {
		r.writePlain("Discarded edits for session #%d\n", session.Sequence())
		return nil
	}

	pills := repositories.NewPillRepository(db, fileLogger)
	if err := pills.SaveDocument(session.ID(), manager.ExportRaw()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.writePlain("✓ Saved session #%d\n", session.Sequence())
	return nil
}
