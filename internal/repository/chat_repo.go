package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type ChatRepository interface {
	// GetOrCreate finds the conversation for the participant pair, creating
	// an empty one on first contact.
	GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (*entity.Chat, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Chat, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Chat, error)
	// AppendMessage pushes the message and refreshes the last-message cache
	// in a single update.
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, message entity.ChatMessage) error
	// MarkRead flags every message not sent by the reader as read.
	MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) error
}
