package api

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/engine"
	"github.com/ayusman/flinch/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

var finishedAt = time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)

func createRun(t *testing.T, s *store.Store, id, challengeID string, offset time.Duration) engine.Summary {
	t.Helper()

	run := engine.Summary{
		ID:          id,
		ChallengeID: challengeID,
		Difficulty:  choreo.Hard,
		Score:       340,
		MaxCombo:    3,
		Stats:       engine.Stats{Perfects: 2, Goods: 1},
		Health:      100,
		Rank:        engine.RankA,
		Elapsed:     4200 * time.Millisecond,
		FinishedAt:  finishedAt.Add(offset),
	}
	if err := s.Runs().Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
