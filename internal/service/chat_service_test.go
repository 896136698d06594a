package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
)

func testChat(a, b primitive.ObjectID) *entity.Chat {
	chat, _ := entity.NewChat(a, b)
	chat.ID = primitive.NewObjectID()
	return chat
}

func TestOpenChat_RejectsSelf(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	userID := primitive.NewObjectID()

	_, err := svc.OpenChat(context.Background(), userID, userID)

	assert.ErrorIs(t, err, ErrValidation)
	chatRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenChat_VerifiesPeerExists(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	userID := primitive.NewObjectID()
	peerID := primitive.NewObjectID()
	chat := testChat(userID, peerID)

	userRepo.On("GetByID", mock.Anything, peerID).Return(activeUser("x"), nil)
	chatRepo.On("GetOrCreate", mock.Anything, userID, peerID).Return(chat, nil)

	got, err := svc.OpenChat(context.Background(), userID, peerID)

	assert.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)
}

func TestSendMessage_NotifiesPeer(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	svc := NewChatService(chatRepo, userRepo, publisher, logger.NewNop())

	senderID := primitive.NewObjectID()
	peerID := primitive.NewObjectID()
	chat := testChat(senderID, peerID)

	chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)
	chatRepo.On("AppendMessage", mock.Anything, chat.ID, mock.AnythingOfType("entity.ChatMessage")).Return(nil)
	publisher.On("Publish", mock.Anything, fmt.Sprintf("chat.message.%s", peerID.Hex()), mock.Anything).Return(nil)

	message, err := svc.SendMessage(context.Background(), senderID, chat.ID, "  is the wheat still available?  ")

	assert.NoError(t, err)
	assert.Equal(t, senderID, message.Sender)
	assert.Equal(t, "is the wheat still available?", message.Content)
	publisher.AssertExpectations(t)
}

func TestSendMessage_OnlyParticipants(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	chat := testChat(primitive.NewObjectID(), primitive.NewObjectID())
	chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)

	_, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), chat.ID, "hello")

	assert.ErrorIs(t, err, ErrForbidden)
	chatRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_Validation(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	chatID := primitive.NewObjectID()

	_, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), chatID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SendMessage(context.Background(), primitive.NewObjectID(), chatID, strings.Repeat("a", maxMessageLength+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetChat_MarksPeerMessagesRead(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	readerID := primitive.NewObjectID()
	peerID := primitive.NewObjectID()
	chat := testChat(readerID, peerID)
	chat.Messages = []entity.ChatMessage{
		{Sender: peerID, Content: "ping"},
		{Sender: readerID, Content: "pong"},
	}

	chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)
	chatRepo.On("MarkRead", mock.Anything, chat.ID, readerID).Return(nil)

	got, err := svc.GetChat(context.Background(), readerID, chat.ID)

	assert.NoError(t, err)
	assert.True(t, got.Messages[0].Read)
	assert.False(t, got.Messages[1].Read)
}

func TestGetChat_ForbiddenForOutsiders(t *testing.T) {
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	svc := NewChatService(chatRepo, userRepo, nil, logger.NewNop())

	chat := testChat(primitive.NewObjectID(), primitive.NewObjectID())
	chatRepo.On("GetByID", mock.Anything, chat.ID).Return(chat, nil)

	_, err := svc.GetChat(context.Background(), primitive.NewObjectID(), chat.ID)

	assert.ErrorIs(t, err, ErrForbidden)
	chatRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}
