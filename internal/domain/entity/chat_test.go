package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSortParticipants_CanonicalOrder(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, SortParticipants(a, b), SortParticipants(b, a))
}

func TestNewChat_Validation(t *testing.T) {
	userID := primitive.NewObjectID()

	_, err := NewChat(userID, userID)
	assert.Error(t, err)

	_, err = NewChat(userID, primitive.NilObjectID)
	assert.Error(t, err)
}

func TestChat_Participants(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	chat, err := NewChat(a, b)
	assert.NoError(t, err)

	assert.True(t, chat.HasParticipant(a))
	assert.True(t, chat.HasParticipant(b))
	assert.False(t, chat.HasParticipant(primitive.NewObjectID()))

	assert.Equal(t, b, chat.OtherParticipant(a))
	assert.Equal(t, a, chat.OtherParticipant(b))
}
