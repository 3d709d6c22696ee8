package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
	results  []Result
}

func NewMemoryRepository() Repository {
	return &memoryRepo{sessions: make(map[string]*Session)}
}

func (r *memoryRepo) SaveSession(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	cp := *s
	cp.Questions = append([]Question(nil), s.Questions...)
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memoryRepo) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	cp.Questions = append([]Question(nil), s.Questions...)
	return &cp, nil
}

func (r *memoryRepo) SaveResult(_ context.Context, res *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID.IsZero() {
		res.ID = primitive.NewObjectID()
	}
	if res.CompletedAt.IsZero() {
		res.CompletedAt = time.Now().UTC()
	}
	r.results = append(r.results, *res)
	return nil
}

func (r *memoryRepo) ListResults(_ context.Context, userID primitive.ObjectID, topic string, limit int64) ([]Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Result
	for _, res := range r.results {
		if res.UserID != userID {
			continue
		}
		if topic != "" && res.Topic != topic {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) Stats(_ context.Context, userID primitive.ObjectID) (*AggregateStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int
	var sum float64
	topics := make(map[string]struct{})
	for _, res := range r.results {
		if res.UserID != userID {
			continue
		}
		total++
		sum += res.Percentage
		topics[res.Topic] = struct{}{}
	}
	stats := &AggregateStats{TotalQuizzes: total, TopicsCovered: len(topics)}
	if total > 0 {
		stats.AverageScore = roundTwo(sum / float64(total))
	}
	return stats, nil
}

func (r *memoryRepo) CountResults(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, res := range r.results {
		if res.UserID == userID {
			n++
		}
	}
	return n, nil
}
