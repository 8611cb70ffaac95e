// File: internal/repository/conversation/gorm_repository.go
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-lifexia/internal/domain"
	"gorm.io/gorm"
)

type gormRepository struct {
	db     *gorm.DB
	locks  stripedLocks
	logger Logger
}

// NewGormRepository migrates the schema and returns a SQL-backed repository.
func NewGormRepository(db *gorm.DB, logger Logger) (Repository, error) {
	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Message{}); err != nil {
		logger.Error("[ConversationRepository] schema migration failed", "error", err)
		return nil, errors.New("database error migrating conversation schema")
	}
	return &gormRepository{db: db, logger: logger}, nil
}

func (r *gormRepository) findOrCreate(tx *gorm.DB, userID, sessionID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := tx.Where(domain.Conversation{SessionID: sessionID}).
		Attrs(domain.Conversation{UserID: userID}).
		FirstOrCreate(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *gormRepository) GetOrCreate(ctx context.Context, userID, sessionID string) (*domain.Conversation, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	unlock := r.locks.lock(sessionID)
	defer unlock()

	conv, err := r.findOrCreate(r.db.WithContext(ctx), userID, sessionID)
	if err != nil {
		r.logger.Error("[ConversationRepository] get-or-create failed", "session_id", sessionID, "error", err)
		return nil, errors.New("database error loading conversation")
	}
	return conv, nil
}

func (r *gormRepository) Append(ctx context.Context, userID, sessionID string, msgs ...domain.Message) ([]domain.Message, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	if len(msgs) == 0 {
		return []domain.Message{}, nil
	}
	unlock := r.locks.lock(sessionID)
	defer unlock()

	stored := make([]domain.Message, len(msgs))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := r.findOrCreate(tx, userID, sessionID)
		if err != nil {
			return err
		}

		var last int
		if err := tx.Model(&domain.Message{}).
			Where("conversation_id = ?", conv.ID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		now := time.Now()
		for i, m := range msgs {
			m.ID = 0
			m.ConversationID = conv.ID
			m.Seq = last + i + 1
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
			}
			stored[i] = m
		}
		return tx.Create(&stored).Error
	})
	if err != nil {
		r.logger.Error("[ConversationRepository] append failed", "session_id", sessionID, "error", err)
		return nil, errors.New("database error appending messages")
	}
	return stored, nil
}

func orderedMessages(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC, id ASC")
}

func (r *gormRepository) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	conv, err := r.Get(ctx, sessionID)
	if errors.Is(err, ErrConversationNotFound) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	if conv.Messages == nil {
		return []domain.Message{}, nil
	}
	return conv.Messages, nil
}

func (r *gormRepository) Get(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", orderedMessages).
		Where("session_id = ?", sessionID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		r.logger.Error("[ConversationRepository] get failed", "session_id", sessionID, "error", err)
		return nil, errors.New("database error fetching conversation")
	}
	return &conv, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", orderedMessages).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		r.logger.Error("[ConversationRepository] list by user failed", "user_id", userID, "error", err)
		return nil, errors.New("database error fetching conversations")
	}

	summaries := make([]domain.ConversationSummary, len(convs))
	for i, c := range convs {
		summaries[i] = domain.Summarize(c, c.Messages)
	}
	return summaries, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrConversationNotFound
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Conversation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
	if errors.Is(err, ErrConversationNotFound) {
		return err
	}
	if err != nil {
		r.logger.Error("[ConversationRepository] delete failed", "id", id, "error", err)
		return errors.New("database error deleting conversation")
	}
	r.logger.Info("[ConversationRepository] conversation deleted", "id", id)
	return nil
}

func (r *gormRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Select("id").Where("session_id = ?", sessionID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrConversationNotFound
	}
	if err != nil {
		return errors.New("database error fetching conversation")
	}
	return r.Delete(ctx, conv.ID)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
