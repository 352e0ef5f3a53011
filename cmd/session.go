package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seisiun/tunelog/internal/document"
	"github.com/seisiun/tunelog/internal/formatter"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/repositories"
	"github.com/seisiun/tunelog/internal/shared"
	"github.com/urfave/cli/v3"
)

// sessionSummary is the output DTO for session listings.
type sessionSummary struct {
	ID         string `json:"id"`
	Sequence   int    `json:"sequence"`
	Name       string `json:"name"`
	OccurredOn string `json:"occurred_on"`
}

// resolveSession finds a session by sequence number or ID.
func resolveSession(repo *repositories.SessionRepository, arg string) (*models.Session, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: session sequence or ID", shared.ErrMissingArgument)
	}
	if sequence, err := strconv.Atoi(arg); err == nil {
		return repo.GetBySequence(sequence)
	}
	return repo.Get(arg)
}

// loadSessionDocument reads a session's tune log into a fresh document manager.
func (r *Runner) loadSessionDocument(db *sql.DB, session *models.Session) (*document.Manager, error) {
	pills := repositories.NewPillRepository(db, r.logger)
	raws, err := pills.LoadDocument(session.ID())
	if err != nil {
		return nil, err
	}

	manager := document.NewManager(document.Opts{
		UndoDepth: r.config.Editor.UndoDepth,
		Logger:    r.logger,
	})
	manager.Load(raws)
	return manager, nil
}

// SessionCreate creates a new session occurrence.
func (r *Runner) SessionCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	date := cmd.String("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSessionRepository(db)
	session := models.NewSession(0, name, date)
	if err := repo.Create(session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Info("created session", "sequence", session.Sequence(), "name", name)
	r.writePlain("✓ Created session #%d: %s (%s)\n", session.Sequence(), name, date)
	return nil
}

// SessionList lists session occurrences.
func (r *Runner) SessionList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSessionRepository(db)
	sessions, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if cmd.Bool("json") {
		summaries := make([]sessionSummary, len(sessions))
		for i, session := range sessions {
			summaries[i] = sessionSummary{
				ID:         session.ID(),
				Sequence:   session.Sequence(),
				Name:       session.Name(),
				OccurredOn: session.OccurredOn(),
			}
		}
		return r.writeJSON(summaries, true)
	}

	if len(sessions) == 0 {
		r.writePlain("No sessions found. Create one with 'tunelog session create'.\n")
		return nil
	}

	for _, session := range sessions {
		r.writePlain("#%d  %s (%s)\n", session.Sequence(), session.Name(), session.OccurredOn())
	}
	return nil
}

// SessionShow prints a session's tune log grouped into sets.
func (r *Runner) SessionShow(ctx context.Context, cmd *cli.Command) error {
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
	doc := manager.Document()

	if cmd.Bool("json") {
		return r.writeJSON(doc, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s — %s", session.Name(), session.OccurredOn()))
	if len(doc) == 0 {
		r.writePlain("(empty tune log)\n")
		return nil
	}
	for i, set := range doc {
		names := make([]string, len(set))
		for j, pill := range set {
			names[j] = pill.TuneName
			if !pill.Linked() {
				names[j] += " ?"
			}
		}
		r.writePlain("%d. %s\n", i+1, strings.Join(names, " / "))
	}
	r.writePlain("\n%s in %s\n",
		shared.FormatCount(doc.PillCount(), "tune"), shared.FormatCount(doc.SetCount(), "set"))
	return nil
}

// SessionExport writes a session's tune log to a file in the chosen format.
func (r *Runner) SessionExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

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

	export := models.NewSessionExport(session.Name(), session.OccurredOn(), manager.Document())

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s and %s\n", result.TunesFile, result.MetadataFile)
	case "markdown", "md":
		mdFile, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s\n", mdFile)
	case "text", "txt":
		textFile, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s\n", textFile)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	return nil
}
