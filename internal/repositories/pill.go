package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/ordering"
	"github.com/seisiun/tunelog/internal/shared"
)

// PillRepository persists the pill rows of a session's tune log.
//
// Rows carry both a legacy integer order number and a fractional order token;
// every write path keeps the two orderings in agreement. Token validation
// failures on load are fatal data-integrity conditions surfaced to the caller,
// never silently repaired.
type PillRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewPillRepository creates a new PillRepository with the given database connection
func NewPillRepository(db *sql.DB, logger *log.Logger) *PillRepository {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PillRepository{db: db, logger: shared.WithLogger(logger, "component", "pills")}
}

// SaveDocument replaces the session's full tune log in one transaction.
//
// Tokens are regenerated evenly for the new row set, so a full save doubles as
// a rebalance.
func (r *PillRepository) SaveDocument(sessionID string, raws []models.RawTune) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session ID", shared.ErrMissingArgument)
	}

	tokens, err := ordering.Rebalance(len(raws))
	if err != nil {
		return fmt.Errorf("failed to generate order tokens: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pills WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to clear session pills: %w", err)
	}

	query := `
		INSERT INTO pills (id, session_id, order_number, order_position, continues_set, tune_id, tune_name, setting, tune_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for i, raw := range raws {
		pill := models.NewPersistedPill(sessionID, raw, tokens[i])
		pill.SetID(shared.GenerateID())
		if err := pill.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err := tx.Exec(query,
			pill.ID(),
			sessionID,
			raw.OrderNumber,
			tokens[i],
			raw.ContinuesSet,
			raw.TuneID,
			raw.TuneName,
			raw.Setting,
			raw.TuneType,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert pill: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}

	r.logger.Debug("saved document", "session", sessionID, "pills", len(raws))
	return nil
}

// LoadDocument reads the session's tune log ordered by fractional token.
//
// The stored token sequence is validated on the way out; a duplicate or
// misordered token fails the load so the caller can run an explicit repair.
func (r *PillRepository) LoadDocument(sessionID string) ([]models.RawTune, error) {
	query := `
		SELECT order_number, order_position, continues_set, tune_id, tune_name, setting, tune_type
		FROM pills
		WHERE session_id = ?
		ORDER BY order_position ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pills: %w", err)
	}
	defer rows.Close()

	var (
		raws   []models.RawTune
		tokens []string
	)
	for rows.Next() {
		var (
			raw    models.RawTune
			token  string
			tuneID sql.NullString
		)
		err := rows.Scan(&raw.OrderNumber, &token, &raw.ContinuesSet, &tuneID, &raw.TuneName, &raw.Setting, &raw.TuneType)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pill: %w", err)
		}
		raw.TuneID = tuneID.String
		raws = append(raws, raw)
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if err := ordering.Validate(tokens); err != nil {
		r.logger.Error("corrupt order tokens", "session", sessionID, "err", err)
		return nil, fmt.Errorf("session %s has corrupt order tokens: %w", sessionID, err)
	}

	return raws, nil
}

// InsertAfter inserts one pill directly after the row with afterID, minting a
// token between its neighbors. An empty afterID inserts at the front.
//
// Later rows keep their tokens; only the legacy order numbers after the
// insertion point shift.
func (r *PillRepository) InsertAfter(sessionID, afterID string, raw models.RawTune) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		prevToken  string
		prevNumber int
	)
	if afterID != "" {
		err := tx.QueryRow(
			"SELECT order_position, order_number FROM pills WHERE session_id = ? AND id = ?",
			sessionID, afterID,
		).Scan(&prevToken, &prevNumber)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: pill %s", shared.ErrNotFound, afterID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up anchor pill: %w", err)
		}
	}

	var nextToken string
	err = tx.QueryRow(
		"SELECT order_position FROM pills WHERE session_id = ? AND order_position > ? ORDER BY order_position ASC LIMIT 1",
		sessionID, prevToken,
	).Scan(&nextToken)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up next pill: %w", err)
	}

	token, err := ordering.Between(prevToken, nextToken)
	if err != nil {
		return fmt.Errorf("failed to mint order token: %w", err)
	}

	raw.OrderNumber = prevNumber + 1
	pill := models.NewPersistedPill(sessionID, raw, token)
	pill.SetID(shared.GenerateID())
	if err := pill.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = tx.Exec(
		"UPDATE pills SET order_number = order_number + 1 WHERE session_id = ? AND order_number > ?",
		sessionID, prevNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to shift order numbers: %w", err)
	}

	query := `
		INSERT INTO pills (id, session_id, order_number, order_position, continues_set, tune_id, tune_name, setting, tune_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	_, err = tx.Exec(query,
		pill.ID(),
		sessionID,
		raw.OrderNumber,
		token,
		raw.ContinuesSet,
		raw.TuneID,
		raw.TuneName,
		raw.Setting,
		raw.TuneType,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}

	return nil
}

// TokenRow pairs a pill's fractional order token with its legacy order
// number. Sorting by token must agree with sorting by number.
type TokenRow struct {
	OrderNumber int
	Token       string
}

// Tokens returns the session's order tokens in stored byte order, each with
// its legacy order number.
func (r *PillRepository) Tokens(sessionID string) ([]TokenRow, error) {
	rows, err := r.db.Query(
		"SELECT order_number, order_position FROM pills WHERE session_id = ? ORDER BY order_position ASC",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []TokenRow
	for rows.Next() {
		var row TokenRow
		if err := rows.Scan(&row.OrderNumber, &row.Token); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tokens, nil
}

// Repair rewrites the session's order tokens as one evenly spaced set, keyed
// by the legacy order numbers. This is the explicit recovery path for
// duplicate or corrupted tokens reported by LoadDocument.
func (r *PillRepository) Repair(sessionID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(
		"SELECT id FROM pills WHERE session_id = ? ORDER BY order_number ASC, order_position ASC",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to query pills: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan pill: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	tokens, err := ordering.Rebalance(len(ids))
	if err != nil {
		return fmt.Errorf("failed to generate order tokens: %w", err)
	}

	// Two passes: park every row on a unique placeholder first, so fresh
	// tokens cannot transiently collide with stale ones under the unique
	// (session_id, order_position) index.
	for _, id := range ids {
		_, err := tx.Exec("UPDATE pills SET order_position = ? WHERE id = ?", "repair:"+id, id)
		if err != nil {
			return fmt.Errorf("failed to park pill token: %w", err)
		}
	}

	now := time.Now()
	for i, id := range ids {
		_, err := tx.Exec(
			"UPDATE pills SET order_position = ?, order_number = ?, updated_at = ? WHERE id = ?",
			tokens[i], i+1, now, id,
		)
		if err != nil {
			return fmt.Errorf("failed to rewrite pill token: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit repair: %w", err)
	}

	r.logger.Info("rebalanced order tokens", "session", sessionID, "pills", len(ids))
	return nil
}

// Count returns the number of pill rows stored for the session.
func (r *PillRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM pills WHERE session_id = ?", sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pills: %w", err)
	}
	return n, nil
}
