package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/engine"
)

// RunRepository persists finished run summaries.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

const runColumns = `id, challenge_id, difficulty, score, max_combo, perfects, goods, misses, earlies,
	health, game_over, rank, elapsed_ms, finished_at`

// Create inserts a run summary.
func (r *RunRepository) Create(s engine.Summary) error {
	_, err := r.db.Exec(
		`INSERT INTO runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ChallengeID, string(s.Difficulty), s.Score, s.MaxCombo,
		s.Stats.Perfects, s.Stats.Goods, s.Stats.Misses, s.Stats.Earlies,
		s.Health, s.GameOver, string(s.Rank), s.Elapsed.Milliseconds(), s.FinishedAt,
	)
	return err
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*engine.Summary, error) {
	s, err := scanRun(r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (r *RunRepository) List(limit int) ([]*engine.Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*engine.Summary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListByChallenge returns the runs of one challenge, most recent first.
func (r *RunRepository) ListByChallenge(challengeID string) ([]*engine.Summary, error) {
	rows, err := r.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE challenge_id = ? ORDER BY finished_at DESC`,
		challengeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*engine.Summary
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// Delete removes a run and its replay.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*engine.Summary, error) {
	s := &engine.Summary{}
	var difficulty, rank string
	var gameOver int
	var elapsedMs int64

	err := row.Scan(
		&s.ID, &s.ChallengeID, &difficulty, &s.Score, &s.MaxCombo,
		&s.Stats.Perfects, &s.Stats.Goods, &s.Stats.Misses, &s.Stats.Earlies,
		&s.Health, &gameOver, &rank, &elapsedMs, &s.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Difficulty = choreo.Difficulty(difficulty)
	s.Rank = engine.Rank(rank)
	s.GameOver = gameOver != 0
	s.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return s, nil
}
