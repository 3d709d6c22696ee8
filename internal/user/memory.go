package user

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo is the repository used when no database URI is configured.
type memoryRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*User
}

func NewMemoryRepository() Repository {
	return &memoryRepo{users: make(map[primitive.ObjectID]*User)}
}

func (r *memoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) GetByPublicID(_ context.Context, publicID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PublicID == publicID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memoryRepo) UpdateStats(_ context.Context, id primitive.ObjectID, stats Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Stats = stats
	return nil
}
