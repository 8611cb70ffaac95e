// File: internal/repository/conversation/memory_repository.go
package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iyunix/go-lifexia/internal/domain"
)

type memoryConversation struct {
	mu       sync.Mutex
	meta     domain.Conversation
	messages []domain.Message
	deleted  bool
}

// memoryRepository keeps conversations in process memory. mu guards the
// indexes; each conversation has its own lock for appends.
type memoryRepository struct {
	mu       sync.RWMutex
	nextID   uint
	sessions map[string]*memoryConversation
	byID     map[uint]*memoryConversation
	now      func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		sessions: make(map[string]*memoryConversation),
		byID:     make(map[uint]*memoryConversation),
		now:      time.Now,
	}
}

func (r *memoryRepository) lookup(sessionID string) *memoryConversation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

func (r *memoryRepository) getOrCreate(userID, sessionID string) *memoryConversation {
	if c := r.lookup(sessionID); c != nil {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[sessionID]; ok {
		return c
	}
	r.nextID++
	c := &memoryConversation{meta: domain.Conversation{
		ID:        r.nextID,
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: r.now(),
	}}
	r.sessions[sessionID] = c
	r.byID[c.meta.ID] = c
	return c
}

func (r *memoryRepository) GetOrCreate(ctx context.Context, userID, sessionID string) (*domain.Conversation, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	c := r.getOrCreate(userID, sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.meta
	return &conv, nil
}

func (r *memoryRepository) Append(ctx context.Context, userID, sessionID string, msgs ...domain.Message) ([]domain.Message, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	for {
		c := r.getOrCreate(userID, sessionID)
		c.mu.Lock()
		if c.deleted {
			// Lost a race with Delete; the next getOrCreate builds a fresh log.
			c.mu.Unlock()
			continue
		}
		stored := make([]domain.Message, len(msgs))
		for i, m := range msgs {
			m.ConversationID = c.meta.ID
			m.Seq = len(c.messages) + 1
			if m.CreatedAt.IsZero() {
				m.CreatedAt = r.now()
			}
			c.messages = append(c.messages, m)
			stored[i] = m
		}
		c.mu.Unlock()
		return stored, nil
	}
}

func (r *memoryRepository) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	c := r.lookup(sessionID)
	if c == nil {
		return []domain.Message{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message{}, c.messages...), nil
}

func (r *memoryRepository) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	c := r.lookup(sessionID)
	if c == nil {
		return nil, ErrConversationNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.meta
	conv.Messages = append([]domain.Message{}, c.messages...)
	return &conv, nil
}

func (r *memoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	r.mu.RLock()
	var owned []*memoryConversation
	for _, c := range r.sessions {
		if c.meta.UserID == userID {
			owned = append(owned, c)
		}
	}
	r.mu.RUnlock()

	summaries := make([]domain.ConversationSummary, 0, len(owned))
	for _, c := range owned {
		c.mu.Lock()
		summaries = append(summaries, domain.Summarize(c.meta, c.messages))
		c.mu.Unlock()
	}
	sortNewestFirst(summaries)
	return summaries, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	c, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		delete(r.sessions, c.meta.SessionID)
	}
	r.mu.Unlock()
	if !ok {
		return ErrConversationNotFound
	}

	c.mu.Lock()
	c.deleted = true
	c.messages = nil
	c.mu.Unlock()
	return nil
}

func (r *memoryRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	c := r.lookup(sessionID)
	if c == nil {
		return ErrConversationNotFound
	}
	return r.Delete(ctx, c.meta.ID)
}

func (r *memoryRepository) Close() error {
	return nil
}

func sortNewestFirst(s []domain.ConversationSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].ID > s[j].ID
	})
}
