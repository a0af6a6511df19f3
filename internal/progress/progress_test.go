package progress

import (
	"math"
	"path/filepath"
	"testing"

	"nasty-client/internal/roles"
	"nasty-client/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewStore(st)
}

func TestGetOrCreateFirstTouch(t *testing.T) {
	p := newTestStore(t)

	record, err := p.GetOrCreate("501")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if record.UserID != "501" {
		t.Errorf("user id = %q", record.UserID)
	}
	if len(record.CompletedRoles) != 0 || record.CurrentLevelIndex != 0 || record.TotalScore != 0 {
		t.Errorf("fresh record not empty: %+v", record)
	}
	if record.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	again, err := p.GetOrCreate("501")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if !again.CreatedAt.Equal(record.CreatedAt) {
		t.Error("second touch must return the same record, not a new one")
	}
}

func TestGetOrCreateMigratesLegacyRecord(t *testing.T) {
	p := newTestStore(t)

	legacy := storage.NewUserProgress("502")
	legacy.CompletedRoles = []string{"svetlana", "marina"}
	legacy.BestScores = map[string]float64{"svetlana": 5, "marina": 3}
	legacy.TotalScore = 8
	legacy.CurrentLevelIndex = 2
	if err := p.st.PutUser(legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}

	record, err := p.GetOrCreate("502")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(record.CompletedRoles) != 2 || record.CompletedRoles[0] != "dmitry" || record.CompletedRoles[1] != "irina" {
		t.Errorf("completed = %v, want remapped [dmitry irina]", record.CompletedRoles)
	}

	// the migrated form must be what was persisted
	stored, ok, err := p.st.GetUser("502")
	if err != nil || !ok {
		t.Fatalf("GetUser: ok=%v err=%v", ok, err)
	}
	if len(stored.CompletedRoles) != 2 || stored.CompletedRoles[0] != "dmitry" {
		t.Errorf("persisted record not migrated: %v", stored.CompletedRoles)
	}
}

func TestUpdateAfterCompletionNewRole(t *testing.T) {
	p := newTestStore(t)

	record, err := p.UpdateAfterCompletion("503", "dmitry", 7.5)
	if err != nil {
		t.Fatalf("UpdateAfterCompletion: %v", err)
	}
	if len(record.CompletedRoles) != 1 || record.CompletedRoles[0] != "dmitry" {
		t.Errorf("completed = %v", record.CompletedRoles)
	}
	if record.CurrentLevelIndex != 1 {
		t.Errorf("index = %d, want 1", record.CurrentLevelIndex)
	}
	if record.BestScores["dmitry"] != 7.5 || record.TotalScore != 7.5 {
		t.Errorf("scores = %v total = %v", record.BestScores, record.TotalScore)
	}
}

func TestUpdateAfterCompletionReplayKeepsBest(t *testing.T) {
	p := newTestStore(t)

	if _, err := p.UpdateAfterCompletion("504", "dmitry", 7.0); err != nil {
		t.Fatal(err)
	}
	record, err := p.UpdateAfterCompletion("504", "dmitry", 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if record.BestScores["dmitry"] != 7.0 {
		t.Errorf("best = %v, worse replay must not lower it", record.BestScores["dmitry"])
	}
	if record.CurrentLevelIndex != 1 {
		t.Errorf("index = %d, replay must not advance it", record.CurrentLevelIndex)
	}
	if len(record.CompletedRoles) != 1 {
		t.Errorf("completed = %v, replay must not duplicate", record.CompletedRoles)
	}

	record, err = p.UpdateAfterCompletion("504", "dmitry", 9.0)
	if err != nil {
		t.Fatal(err)
	}
	if record.BestScores["dmitry"] != 9.0 || record.TotalScore != 9.0 {
		t.Errorf("better replay must raise best and total: %+v", record)
	}
}

func TestUpdateAfterCompletionIndexCapsAtLastSlot(t *testing.T) {
	p := newTestStore(t)

	var record *storage.UserProgress
	var err error
	for _, key := range roles.RoleOrder {
		record, err = p.UpdateAfterCompletion("505", key, 5)
		if err != nil {
			t.Fatalf("complete %s: %v", key, err)
		}
	}
	if record.CurrentLevelIndex != len(roles.RoleOrder)-1 {
		t.Errorf("index = %d, want cap %d", record.CurrentLevelIndex, len(roles.RoleOrder)-1)
	}
	if len(record.CompletedRoles) != len(roles.RoleOrder) {
		t.Errorf("completed = %v", record.CompletedRoles)
	}
}

func TestTotalScoreIsSumOfBest(t *testing.T) {
	p := newTestStore(t)

	if _, err := p.UpdateAfterCompletion("506", "dmitry", 4.2); err != nil {
		t.Fatal(err)
	}
	if _, err := p.UpdateAfterCompletion("506", "irina", 6.3); err != nil {
		t.Fatal(err)
	}
	record, err := p.UpdateAfterCompletion("506", "max", 2.5)
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range record.BestScores {
		sum += v
	}
	if math.Abs(record.TotalScore-sum) > 1e-9 {
		t.Errorf("total %v != sum of best %v", record.TotalScore, sum)
	}
}

func TestUpdateAfterCompletionRejectsUnknownRole(t *testing.T) {
	p := newTestStore(t)
	if _, err := p.UpdateAfterCompletion("507", "boris", 5); err == nil {
		t.Error("unknown role must be rejected")
	}
}

func TestLeaderboard(t *testing.T) {
	p := newTestStore(t)

	seed := map[string]float64{"a": 30, "b": 30, "c": 10, "d": 0}
	for id, total := range seed {
		r := storage.NewUserProgress(id)
		if total > 0 {
			r.BestScores = map[string]float64{"dmitry": total}
			r.TotalScore = total
		}
		if err := p.st.PutUser(r); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	board, err := p.Leaderboard(2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("board size = %d, want 2", len(board))
	}
	for _, r := range board {
		if r.TotalScore != 30 {
			t.Errorf("entry %q has total %v, want the two 30s", r.UserID, r.TotalScore)
		}
	}

	full, err := p.Leaderboard(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(full) != 3 {
		t.Errorf("board = %d entries, zero-score user must be hidden", len(full))
	}
	if full[len(full)-1].UserID != "c" {
		t.Errorf("last entry = %q, want c", full[len(full)-1].UserID)
	}

	for _, limit := range []int{0, -1} {
		board, err := p.Leaderboard(limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(board) != 0 {
			t.Errorf("Leaderboard(%d) returned %d entries, want none", limit, len(board))
		}
	}
}
