// /internal/progress/progress.go
package progress

import (
	"fmt"
	"sync"

	"nasty-client/internal/roles"
	"nasty-client/internal/storage"
)

// Store is the progression engine on top of storage. All writes for one user
// go through that user's lock, so a replayed victory can never lose an
// update; different users never wait on each other here.
type Store struct {
	st *storage.Storage

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(st *storage.Storage) *Store {
	return &Store{
		st:    st,
		locks: make(map[string]*sync.Mutex),
	}
}

func (p *Store) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[userID] = l
	}
	return l
}

// GetOrCreate returns the user's record, creating an empty one on first
// touch. Legacy records are migrated to the current roster before being
// returned; migration writes only when it actually changed something.
func (p *Store) GetOrCreate(userID string) (*storage.UserProgress, error) {
	l := p.userLock(userID)
	l.Lock()
	defer l.Unlock()

	return p.getOrCreateLocked(userID)
}

func (p *Store) getOrCreateLocked(userID string) (*storage.UserProgress, error) {
	record, ok, err := p.st.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		record = storage.NewUserProgress(userID)
		if err := p.st.PutUser(record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if Migrate(record) {
		if err := p.st.PutUser(record); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// UpdateAfterCompletion applies one won conversation to the durable record:
//   - the role joins CompletedRoles if it is new;
//   - CurrentLevelIndex advances by one for a new role, but never past the
//     last slot; replaying an already-completed role leaves it alone;
//   - BestScores keeps the maximum score ever achieved for the role;
//   - TotalScore is recomputed from BestScores, never adjusted in place.
//
// The record is persisted in one write; on failure the previous record stays
// visible unchanged.
func (p *Store) UpdateAfterCompletion(userID, roleKey string, score float64) (*storage.UserProgress, error) {
	if _, ok := roles.Get(roleKey); !ok {
		return nil, fmt.Errorf("progress: unknown role %q", roleKey)
	}

	l := p.userLock(userID)
	l.Lock()
	defer l.Unlock()

	record, err := p.getOrCreateLocked(userID)
	if err != nil {
		return nil, err
	}

	alreadyCompleted := false
	for _, r := range record.CompletedRoles {
		if r == roleKey {
			alreadyCompleted = true
			break
		}
	}

	if !alreadyCompleted {
		record.CompletedRoles = append(record.CompletedRoles, roleKey)
		if record.CurrentLevelIndex < len(roles.RoleOrder)-1 {
			record.CurrentLevelIndex++
		}
	}

	if best, ok := record.BestScores[roleKey]; !ok || score > best {
		record.BestScores[roleKey] = score
	}

	record.TotalScore = sumScores(record.BestScores)

	if err := p.st.PutUser(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Leaderboard returns up to limit records with a positive total score,
// best first. Ties keep storage order.
func (p *Store) Leaderboard(limit int) ([]*storage.UserProgress, error) {
	if limit <= 0 {
		return []*storage.UserProgress{}, nil
	}

	all, err := p.st.AllUsers()
	if err != nil {
		return nil, err
	}

	board := make([]*storage.UserProgress, 0, limit)
	for _, record := range all {
		if record.TotalScore <= 0 {
			continue
		}
		board = append(board, record)
		if len(board) == limit {
			break
		}
	}
	return board, nil
}

func sumScores(scores map[string]float64) float64 {
	var total float64
	for _, v := range scores {
		total += v
	}
	return total
}
