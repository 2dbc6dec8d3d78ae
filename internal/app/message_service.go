package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"twotier-board/internal/model"
	"twotier-board/internal/repository"
)

var ErrMessageEmpty = errors.New("message content is empty")

type ListCache interface {
	Get(ctx context.Context) ([]model.Message, bool, error)
	Set(ctx context.Context, messages []model.Message) error
	Invalidate(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}

type EventPublisher interface {
	PublishCreated(ctx context.Context, msg model.Message) error
}

// MessageService owns the read and write paths of the board. The cache and
// publisher are optional; storage is the only source of truth.
type MessageService struct {
	messageRepo *repository.MessageRepository
	listCache   ListCache
	publisher   EventPublisher
}

func NewMessageService(messageRepo *repository.MessageRepository, listCache ListCache, publisher EventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		listCache:   listCache,
		publisher:   publisher,
	}
}

func (s *MessageService) ListMessages(ctx context.Context) ([]model.Message, error) {
	if s.listCache != nil {
		dirty, err := s.listCache.IsDirty(ctx)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.listCache.Get(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.listCache != nil {
		if dirty, dirtyErr := s.listCache.IsDirty(ctx); dirtyErr == nil && !dirty {
			if err := s.listCache.Set(ctx, messages); err != nil {
				log.Printf("cache message list failed: %v", err)
			}
		}
	}
	return messages, nil
}

// PostMessage stores content verbatim. Blank input returns ErrMessageEmpty and writes nothing.
func (s *MessageService) PostMessage(ctx context.Context, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageEmpty
	}

	s.invalidate(ctx)
	message := &model.Message{Content: content}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, *message); err != nil {
			log.Printf("publish message %d failed: %v", message.ID, err)
		}
	}
	return message, nil
}

func (s *MessageService) invalidate(ctx context.Context) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.Invalidate(ctx); err != nil {
		log.Printf("invalidate message list failed: %v", err)
	}
}
