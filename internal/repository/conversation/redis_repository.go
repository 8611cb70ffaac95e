// File: internal/repository/conversation/redis_repository.go
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "conversation:"
	nextIDKey     = keyPrefix + "next_id"
	sessionPrefix = keyPrefix + "session:"
	userPrefix    = keyPrefix + "user:"
	idPrefix      = keyPrefix + "id:"
)

func sessionKey(sessionID string) string  { return sessionPrefix + sessionID }
func messagesKey(sessionID string) string { return sessionPrefix + sessionID + ":messages" }
func userKey(userID string) string        { return userPrefix + userID }
func idKey(id uint) string                { return idPrefix + strconv.FormatUint(uint64(id), 10) }

// redisRepository stores each conversation as a JSON header plus a list of
// JSON messages. RPUSH of a whole batch is atomic, so appends to one session
// cannot interleave.
type redisRepository struct {
	client *redis.Client
	logger Logger
}

func NewRedisRepository(client *redis.Client, logger Logger) Repository {
	return &redisRepository{client: client, logger: logger}
}

func (r *redisRepository) GetOrCreate(ctx context.Context, userID, sessionID string) (*domain.Conversation, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	if conv, err := r.header(ctx, sessionID); err == nil {
		return conv, nil
	} else if !errors.Is(err, ErrConversationNotFound) {
		return nil, err
	}

	id, err := r.client.Incr(ctx, nextIDKey).Result()
	if err != nil {
		return nil, r.wrap("allocate id", err)
	}
	conv := &domain.Conversation{
		ID:        uint(id),
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	raw, err := encodeHeader(conv)
	if err != nil {
		return nil, err
	}

	created, err := r.client.SetNX(ctx, sessionKey(sessionID), raw, 0).Result()
	if err != nil {
		return nil, r.wrap("create conversation", err)
	}
	if !created {
		// Another writer created it first; its header wins.
		return r.header(ctx, sessionID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, idKey(conv.ID), sessionID, 0)
		pipe.ZAdd(ctx, userKey(userID), redis.Z{Score: float64(conv.CreatedAt.UnixNano()), Member: sessionID})
		return nil
	})
	if err != nil {
		return nil, r.wrap("index conversation", err)
	}
	return conv, nil
}

func (r *redisRepository) Append(ctx context.Context, userID, sessionID string, msgs ...domain.Message) ([]domain.Message, error) {
	conv, err := r.GetOrCreate(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []domain.Message{}, nil
	}

	now := time.Now().UTC()
	payload := make([]interface{}, len(msgs))
	stored := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		m.ConversationID = conv.ID
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		raw, err := json.Marshal(storedMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
		if err != nil {
			return nil, err
		}
		payload[i] = raw
		stored[i] = m
	}

	length, err := r.client.RPush(ctx, messagesKey(sessionID), payload...).Result()
	if err != nil {
		return nil, r.wrap("append messages", err)
	}
	first := int(length) - len(msgs) + 1
	for i := range stored {
		stored[i].Seq = first + i
	}
	return stored, nil
}

func (r *redisRepository) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	raws, err := r.client.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, r.wrap("list messages", err)
	}
	return decodeMessages(raws)
}

func (r *redisRepository) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := r.header(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs, err := r.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].ConversationID = conv.ID
	}
	conv.Messages = msgs
	return conv, nil
}

func (r *redisRepository) ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	sessions, err := r.client.ZRevRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, r.wrap("list user conversations", err)
	}

	summaries := make([]domain.ConversationSummary, 0, len(sessions))
	for _, sid := range sessions {
		conv, err := r.header(ctx, sid)
		if errors.Is(err, ErrConversationNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var edge []domain.Message
		pipe := r.client.Pipeline()
		firstCmd := pipe.LIndex(ctx, messagesKey(sid), 0)
		lastCmd := pipe.LIndex(ctx, messagesKey(sid), -1)
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, r.wrap("read conversation edges", err)
		}
		for _, cmd := range []*redis.StringCmd{firstCmd, lastCmd} {
			if raw, err := cmd.Result(); err == nil {
				if msgs, err := decodeMessages([]string{raw}); err == nil {
					edge = append(edge, msgs...)
				}
			}
		}
		summaries = append(summaries, domain.Summarize(*conv, edge))
	}
	return summaries, nil
}

func (r *redisRepository) Delete(ctx context.Context, id uint) error {
	sid, err := r.client.Get(ctx, idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrConversationNotFound
	}
	if err != nil {
		return r.wrap("resolve conversation id", err)
	}
	return r.remove(ctx, id, sid)
}

func (r *redisRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	conv, err := r.header(ctx, sessionID)
	if err != nil {
		return err
	}
	return r.remove(ctx, conv.ID, sessionID)
}

func (r *redisRepository) remove(ctx context.Context, id uint, sessionID string) error {
	conv, err := r.header(ctx, sessionID)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(sessionID), messagesKey(sessionID), idKey(id))
		pipe.ZRem(ctx, userKey(conv.UserID), sessionID)
		return nil
	})
	if err != nil {
		return r.wrap("delete conversation", err)
	}
	r.logger.Info("[ConversationRepository] conversation deleted", "id", id)
	return nil
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}

func (r *redisRepository) header(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, r.wrap("read conversation", err)
	}
	return decodeHeader(raw)
}

func (r *redisRepository) wrap(op string, err error) error {
	r.logger.Error("[ConversationRepository] redis "+op+" failed", "error", err)
	return errors.New("redis error: " + op)
}

type storedMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type storedHeader struct {
	ID        uint      `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeHeader(c *domain.Conversation) (string, error) {
	raw, err := json.Marshal(storedHeader{ID: c.ID, SessionID: c.SessionID, UserID: c.UserID, CreatedAt: c.CreatedAt})
	return string(raw), err
}

func decodeHeader(raw string) (*domain.Conversation, error) {
	var h storedHeader
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, err
	}
	return &domain.Conversation{ID: h.ID, SessionID: h.SessionID, UserID: h.UserID, CreatedAt: h.CreatedAt}, nil
}

func decodeMessages(raws []string) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, len(raws))
	for i, raw := range raws {
		var m storedMessage
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, domain.Message{
			ID:        uint(i + 1),
			Seq:       i + 1,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return msgs, nil
}
