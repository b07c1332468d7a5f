package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/flinch/internal/pose"
	"github.com/ayusman/flinch/internal/target"
)

// Keyframe is one recorded frame of a run.
type Keyframe struct {
	T            time.Duration `json:"t"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Pose         pose.Pose     `json:"pose"`
	RequiredPose pose.Pose     `json:"required_pose"`
	Target       target.Target `json:"target"`
	Hit          bool          `json:"hit"`
	Health       float64       `json:"health"`
}

// ReplayRepository stores the keyframes of finished runs.
type ReplayRepository struct {
	db *sql.DB
}

// Replays returns the replay repository for this store.
func (s *Store) Replays() *ReplayRepository {
	return &ReplayRepository{db: s.db}
}

// Save replaces the keyframes of runID in a single transaction. Times are
// stored with millisecond precision.
func (r *ReplayRepository) Save(runID string, frames []Keyframe) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM replay_frames WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO replay_frames (run_id, sequence, t_ms, x, y, pose, required_pose, target, hit, health)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range frames {
		_, err := stmt.Exec(runID, i, f.T.Milliseconds(), f.X, f.Y,
			string(f.Pose), string(f.RequiredPose), string(f.Target), f.Hit, f.Health)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get returns the keyframes of runID in recording order. A run without a
// replay yields an empty slice.
func (r *ReplayRepository) Get(runID string) ([]Keyframe, error) {
	rows, err := r.db.Query(
		`SELECT t_ms, x, y, pose, required_pose, target, hit, health
		 FROM replay_frames WHERE run_id = ? ORDER BY sequence`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := []Keyframe{}
	for rows.Next() {
		var f Keyframe
		var tMs int64
		var p, required, zone string
		var hit int
		if err := rows.Scan(&tMs, &f.X, &f.Y, &p, &required, &zone, &hit, &f.Health); err != nil {
			return nil, err
		}
		f.T = time.Duration(tMs) * time.Millisecond
		f.Pose = pose.Pose(p)
		f.RequiredPose = pose.Pose(required)
		f.Target = target.Target(zone)
		f.Hit = hit != 0
		frames = append(frames, f)
	}
	return frames, rows.Err()
}
