package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ayusman/flinch/internal/progression"
)

// ProgressRepository stores the single player's progression, mastery and
// unlocked achievements.
type ProgressRepository struct {
	db *sql.DB
}

// Progress returns the progress repository for this store.
func (s *Store) Progress() *ProgressRepository {
	return &ProgressRepository{db: s.db}
}

// Get loads the stored progress. A fresh database yields
// progression.NewProgress().
func (r *ProgressRepository) Get() (progression.Progress, error) {
	p := progression.NewProgress()

	var lastPlayed sql.NullTime
	var stats string
	err := r.db.QueryRow(
		`SELECT level, xp, runs_completed, daily_streak, last_played, stats FROM progress WHERE id = 1`,
	).Scan(&p.Level, &p.XP, &p.RunsCompleted, &p.DailyStreak, &lastPlayed, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if lastPlayed.Valid {
		p.LastPlayed = lastPlayed.Time
	}
	if err := json.Unmarshal([]byte(stats), &p.Stats); err != nil {
		return p, err
	}

	if err := r.loadMastery(&p); err != nil {
		return p, err
	}
	if err := r.loadAchievements(&p); err != nil {
		return p, err
	}
	return p, nil
}

func (r *ProgressRepository) loadMastery(p *progression.Progress) error {
	rows, err := r.db.Query(`SELECT challenge_id, runs, perfect_runs, best_time_ms FROM mastery`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var m progression.Mastery
		var bestMs int64
		if err := rows.Scan(&id, &m.Runs, &m.PerfectRuns, &bestMs); err != nil {
			return err
		}
		m.BestTime = time.Duration(bestMs) * time.Millisecond
		p.Mastery[id] = m
	}
	return rows.Err()
}

func (r *ProgressRepository) loadAchievements(p *progression.Progress) error {
	rows, err := r.db.Query(
		`SELECT id, name, description, tier, unlocked_at FROM achievements ORDER BY unlocked_at, rowid`,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a progression.Achievement
		var tier string
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &tier, &a.UnlockedAt); err != nil {
			return err
		}
		a.Tier = progression.Tier(tier)
		p.Achievements = append(p.Achievements, a)
	}
	return rows.Err()
}

// Save writes p in a single transaction. Mastery rows are replaced; unlocked
// achievements are never removed.
func (r *ProgressRepository) Save(p progression.Progress) error {
	stats, err := json.Marshal(p.Stats)
	if err != nil {
		return err
	}

	var lastPlayed any
	if !p.LastPlayed.IsZero() {
		lastPlayed = p.LastPlayed
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO progress (id, level, xp, runs_completed, daily_streak, last_played, stats)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   level = excluded.level,
		   xp = excluded.xp,
		   runs_completed = excluded.runs_completed,
		   daily_streak = excluded.daily_streak,
		   last_played = excluded.last_played,
		   stats = excluded.stats`,
		p.Level, p.XP, p.RunsCompleted, p.DailyStreak, lastPlayed, string(stats),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM mastery`); err != nil {
		return err
	}
	for id, m := range p.Mastery {
		_, err := tx.Exec(
			`INSERT INTO mastery (challenge_id, runs, perfect_runs, best_time_ms) VALUES (?, ?, ?, ?)`,
			id, m.Runs, m.PerfectRuns, m.BestTime.Milliseconds(),
		)
		if err != nil {
			return err
		}
	}

	for _, a := range p.Achievements {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO achievements (id, name, description, tier, unlocked_at) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Description, string(a.Tier), a.UnlockedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
