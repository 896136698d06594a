package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatMessage struct {
	Sender  primitive.ObjectID `bson:"sender" json:"sender"`
	Content string             `bson:"content" json:"content"`
	Read    bool               `bson:"read" json:"read"`
	SentAt  time.Time          `bson:"sent_at" json:"sentAt"`
}

// Chat is the persisted conversation between exactly two users. Participants
// are stored sorted so the unordered pair has a single canonical form.
type Chat struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants    []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages        []ChatMessage        `bson:"messages" json:"messages"`
	LastMessage     string               `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	LastMessageTime time.Time            `bson:"last_message_time,omitempty" json:"lastMessageTime,omitempty"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
}

// SortParticipants returns the canonical ordering for the unordered pair.
func SortParticipants(a, b primitive.ObjectID) []primitive.ObjectID {
	if a.Hex() <= b.Hex() {
		return []primitive.ObjectID{a, b}
	}
	return []primitive.ObjectID{b, a}
}

func NewChat(a, b primitive.ObjectID) (*Chat, error) {
	if a.IsZero() || b.IsZero() {
		return nil, errors.New("both participants are required")
	}
	if a == b {
		return nil, errors.New("cannot open a chat with yourself")
	}
	return &Chat{
		Participants: SortParticipants(a, b),
		Messages:     []ChatMessage{},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// HasParticipant reports whether the user belongs to this conversation.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer of the given user.
func (c *Chat) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return primitive.NilObjectID
}
