package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/adapter/nats"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

const maxMessageLength = 2000

type ChatService interface {
	OpenChat(ctx context.Context, userID, peerID primitive.ObjectID) (*entity.Chat, error)
	SendMessage(ctx context.Context, senderID, chatID primitive.ObjectID, content string) (*entity.ChatMessage, error)
	GetChat(ctx context.Context, userID, chatID primitive.ObjectID) (*entity.Chat, error)
	ListChats(ctx context.Context, userID primitive.ObjectID) ([]entity.Chat, error)
}

type chatService struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	publisher nats.MessagePublisher
	log       logger.Logger
}

func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	publisher nats.MessagePublisher,
	log logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		publisher: publisher,
		log:       log,
	}
}

func (s *chatService) OpenChat(ctx context.Context, userID, peerID primitive.ObjectID) (*entity.Chat, error) {
	if userID == peerID {
		return nil, fmt.Errorf("%w: cannot open a chat with yourself", ErrValidation)
	}
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetOrCreate(ctx, userID, peerID)
}

func (s *chatService) SendMessage(ctx context.Context, senderID, chatID primitive.ObjectID, content string) (*entity.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrValidation, maxMessageLength)
	}

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	}

	message := entity.ChatMessage{
		Sender:  senderID,
		Content: content,
		SentAt:  time.Now().UTC(),
	}
	if err := s.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	// Push notification for the peer; the stored message is the source of
	// truth, so a failed publish is only logged.
	if s.publisher != nil {
		recipient := chat.OtherParticipant(senderID)
		subject := fmt.Sprintf("%s.%s", nats.SubjectChatMessage, recipient.Hex())
		payload := map[string]interface{}{
			"chatId":  chatID.Hex(),
			"sender":  senderID.Hex(),
			"content": content,
			"sentAt":  message.SentAt,
		}
		if err := s.publisher.Publish(ctx, subject, payload); err != nil {
			s.log.Warnf("Failed to publish chat message to %s: %v", subject, err)
		}
	}

	return &message, nil
}

// GetChat returns the full conversation and marks the peer's messages read.
func (s *chatService) GetChat(ctx context.Context, userID, chatID primitive.ObjectID) (*entity.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	}

	if err := s.chatRepo.MarkRead(ctx, chatID, userID); err != nil {
		s.log.Warnf("Failed to mark chat %s as read: %v", chatID.Hex(), err)
	} else {
		for i := range chat.Messages {
			if chat.Messages[i].Sender != userID {
				chat.Messages[i].Read = true
			}
		}
	}
	return chat, nil
}

func (s *chatService) ListChats(ctx context.Context, userID primitive.ObjectID) ([]entity.Chat, error) {
	return s.chatRepo.ListForUser(ctx, userID)
}
