package main

import (
	"context"
	"fmt"

	"github.com/seisiun/tunelog/internal/ordering"
	"github.com/seisiun/tunelog/internal/repositories"
	"github.com/seisiun/tunelog/internal/shared"
	"github.com/urfave/cli/v3"
)

// TokensValidate checks a session's stored order tokens.
func (r *Runner) TokensValidate(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := resolveSession(repositories.NewSessionRepository(db), cmd.StringArg("session"))
	if err != nil {
		return err
	}

	pills := repositories.NewPillRepository(db, r.logger)
	rows, err := pills.Tokens(session.ID())
	if err != nil {
		return err
	}

	if err := validateTokenRows(rows); err != nil {
		r.logger.Error("token validation failed", "session", session.ID(), "err", err)
		r.writePlain("✗ %v\n", err)
		r.writePlain("Run 'tunelog tokens rebalance %d' to repair.\n", session.Sequence())
		return err
	}

	r.writePlain("✓ %s valid for session #%d\n",
		shared.FormatCount(len(rows), "token"), session.Sequence())
	return nil
}

// validateTokenRows checks the token sequence itself and that the legacy
// order numbers stay ascending under token order.
func validateTokenRows(rows []repositories.TokenRow) error {
	tokens := make([]string, len(rows))
	for i, row := range rows {
		tokens[i] = row.Token
	}
	if err := ordering.Validate(tokens); err != nil {
		return err
	}

	for i := 1; i < len(rows); i++ {
		if rows[i].OrderNumber <= rows[i-1].OrderNumber {
			return fmt.Errorf("%w: order number %d out of sequence under token order",
				shared.ErrTokenOrder, rows[i].OrderNumber)
		}
	}
	return nil
}

// TokensRebalance rewrites a session's order tokens as an evenly spaced set.
func (r *Runner) TokensRebalance(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := resolveSession(repositories.NewSessionRepository(db), cmd.StringArg("session"))
	if err != nil {
		return err
	}

	pills := repositories.NewPillRepository(db, r.logger)
	if err := pills.Repair(session.ID()); err != nil {
		return fmt.Errorf("rebalance failed: %w", err)
	}

	count, err := pills.Count(session.ID())
	if err != nil {
		return err
	}

	r.writePlain("✓ Rebalanced %s for session #%d\n",
		shared.FormatCount(count, "token"), session.Sequence())
	return nil
}
