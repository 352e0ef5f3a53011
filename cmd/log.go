package main

import (
	"context"
	"fmt"

	"github.com/seisiun/tunelog/internal/clipboard"
	"github.com/seisiun/tunelog/internal/repositories"
	"github.com/urfave/cli/v3"
)

// staticBoard serves a fixed text instead of the OS clipboard, backing the
// --text flag.
type staticBoard struct {
	text string
}

func (b staticBoard) ReadText() (string, error) { return b.text, nil }
func (b staticBoard) WriteText(string) error    { return nil }

// LogPaste pastes clipboard content onto the end of a session's tune log and
// saves the result. Plain text is matched against the tune catalogue before
// saving.
func (r *Runner) LogPaste(ctx context.Context, cmd *cli.Command) error {
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

	board := r.board
	if text := cmd.String("text"); text != "" {
		board = staticBoard{text: text}
	}

	rec := clipboard.NewReconciler(clipboard.Opts{
		Manager:     manager,
		Board:       board,
		Matcher:     r.matcher,
		Notifier:    clipboard.NotifyFunc(func(message string) { r.writePlain("%s\n", message) }),
		Concurrency: r.config.Matcher.Concurrency,
		Logger:      r.logger,
	})

	if err := rec.Paste(ctx); err != nil {
		return fmt.Errorf("paste failed: %w", err)
	}

	pills := repositories.NewPillRepository(db, r.logger)
	if err := pills.SaveDocument(session.ID(), manager.ExportRaw()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.writePlain("✓ Saved session #%d\n", session.Sequence())
	return nil
}
