package progress

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*LearningProgress
}

func NewMemoryRepository() Repository {
	return &memoryRepo{records: make(map[primitive.ObjectID]*LearningProgress)}
}

func (r *memoryRepo) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*LearningProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.records[userID]; ok {
		cp := clone(p)
		return cp, nil
	}
	p := &LearningProgress{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Topics: make(map[string]TopicProgress),
	}
	r.records[userID] = clone(p)
	return p, nil
}

func (r *memoryRepo) Save(_ context.Context, p *LearningProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.records[p.UserID] = clone(p)
	return nil
}

func clone(p *LearningProgress) *LearningProgress {
	cp := *p
	cp.Topics = make(map[string]TopicProgress, len(p.Topics))
	for k, v := range p.Topics {
		cp.Topics[k] = v
	}
	cp.Achievements = append([]string(nil), p.Achievements...)
	return &cp
}
