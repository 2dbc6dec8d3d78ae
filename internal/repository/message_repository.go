package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"twotier-board/internal/model"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSchemaBootstrap    = errors.New("schema bootstrap failed")
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// EnsureSchema creates the messages table when it is missing and never alters an existing one.
func (r *MessageRepository) EnsureSchema(ctx context.Context) error {
	migrator := r.db.WithContext(ctx).Migrator()
	if migrator.HasTable(&model.Message{}) {
		return nil
	}
	if err := migrator.CreateTable(&model.Message{}); err != nil {
		// Another process may have won the race between HasTable and CreateTable.
		if migrator.HasTable(&model.Message{}) {
			return nil
		}
		return fmt.Errorf("%w: create messages table: %v", ErrSchemaBootstrap, err)
	}
	return nil
}

// Create inserts message and reloads it, since MySQL has no RETURNING for the
// storage-assigned created_at.
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(message).Error; err != nil {
		return fmt.Errorf("%w: create message: %v", ErrStorageUnavailable, err)
	}
	if err := db.First(message, message.ID).Error; err != nil {
		return fmt.Errorf("%w: reload message %d: %v", ErrStorageUnavailable, message.ID, err)
	}
	return nil
}

// List returns every message, newest first.
func (r *MessageRepository) List(ctx context.Context) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", ErrStorageUnavailable, err)
	}
	return messages, nil
}
