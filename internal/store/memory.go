package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"votebox/internal/apperr"
	"votebox/internal/models"
)

// MemStore is a mutex-guarded in-memory implementation of both UserStore and
// OptionStore. Each method holds the lock for its whole body, which gives it
// the same per-call atomicity the SQL store gets from single-statement
// conditional updates. Tests run against it; it is also handy for local
// experiments without a database.
type MemStore struct {
	mu         sync.Mutex
	users      map[uint]*models.User
	options    map[uint]*models.Option
	nextUser   uint
	nextOption uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:      make(map[uint]*models.User),
		options:    make(map[uint]*models.Option),
		nextUser:   1,
		nextOption: 1,
	}
}

func (s *MemStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return apperr.E(apperr.KindConflict, "User with that username already exists")
		}
	}

	user.ID = s.nextUser
	s.nextUser++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) ActiveByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Deleted {
		return nil, apperr.E(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) ActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && !u.Deleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "user not found")
}

func (s *MemStore) ByUsernameAnyState(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "user not found")
}

func (s *MemStore) ListActive(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if !u.Deleted {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) ClaimVote(ctx context.Context, userID, optionID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.Deleted || u.VotedFor != nil {
		return false, nil
	}
	id := optionID
	u.VotedFor = &id
	u.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) ReleaseVote(ctx context.Context, userID, optionID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.VotedFor == nil || *u.VotedFor != optionID {
		return false, nil
	}
	u.VotedFor = nil
	u.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) MarkDeleted(ctx context.Context, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.Deleted {
		return false, nil
	}
	u.Deleted = true
	u.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) ClearVotedFor(ctx context.Context, optionID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.VotedFor != nil && *u.VotedFor == optionID {
			u.VotedFor = nil
			u.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

// Users and Options expose the two store views. A wrapper type carries the
// OptionStore methods since both interfaces declare Create/ByID/etc.

func (s *MemStore) Users() UserStore { return s }

func (s *MemStore) Options() OptionStore { return (*memOptions)(s) }

type memOptions MemStore

func (s *memOptions) Create(ctx context.Context, option *models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.options {
		if o.Name == option.Name && !o.Deleted {
			return apperr.E(apperr.KindConflict, "Voting with that name already exists")
		}
	}

	option.ID = s.nextOption
	s.nextOption++
	now := time.Now()
	option.CreatedAt = now
	option.UpdatedAt = now
	cp := *option
	s.options[option.ID] = &cp
	return nil
}

func (s *memOptions) ByID(ctx context.Context, id uint) (*models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.options[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "option not found")
	}
	cp := *o
	return &cp, nil
}

func (s *memOptions) ActiveByID(ctx context.Context, id uint) (*models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.options[id]
	if !ok || o.Deleted {
		return nil, apperr.E(apperr.KindNotFound, "option not found")
	}
	cp := *o
	return &cp, nil
}

func (s *memOptions) ActiveByName(ctx context.Context, name string) (*models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.options {
		if o.Name == name && !o.Deleted {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "option not found")
}

func (s *memOptions) ListActive(ctx context.Context) ([]models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Option
	for _, o := range s.options {
		if !o.Deleted {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount < out[j].VoteCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memOptions) AddVotes(ctx context.Context, id uint, delta int, activeOnly bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.options[id]
	if !ok {
		return false, nil
	}
	if activeOnly && o.Deleted {
		return false, nil
	}
	if o.VoteCount+delta < 0 {
		return false, nil
	}
	o.VoteCount += delta
	o.UpdatedAt = time.Now()
	return true, nil
}

func (s *memOptions) MarkDeleted(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.options[id]
	if !ok || o.Deleted {
		return false, nil
	}
	o.Deleted = true
	o.UpdatedAt = time.Now()
	return true, nil
}

// RemoveOption hard-deletes an option row, bypassing the soft-delete
// lifecycle. Tests use it to simulate a corrupted store; nothing in the
// service goes through it.
func (s *MemStore) RemoveOption(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.options, id)
}
