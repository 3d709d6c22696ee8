package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryRepo struct {
	mu            sync.Mutex
	conversations map[primitive.ObjectID]*Conversation
}

func NewMemoryRepository() Repository {
	return &memoryRepo{conversations: make(map[primitive.ObjectID]*Conversation)}
}

func (r *memoryRepo) Create(_ context.Context, c *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := cloneConversation(c)
	r.conversations[c.ID] = cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConversation(c), nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit, skip int64) ([]Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			out = append(out, *cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.conversations {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) AppendMessage(_ context.Context, id primitive.ObjectID, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) SetTopic(_ context.Context, id primitive.ObjectID, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.Topic = topic
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(r.conversations, id)
	return nil
}

func cloneConversation(c *Conversation) *Conversation {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}
