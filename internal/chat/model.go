package chat

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MessageMetadata records which model and learning level produced an
// assistant message.
type MessageMetadata struct {
	Model         string `json:"model,omitempty" bson:"model,omitempty"`
	LearningLevel string `json:"learning_level,omitempty" bson:"learning_level,omitempty"`
}

// Message is immutable once appended and owned exclusively by its parent
// conversation.
type Message struct {
	Role      string           `json:"role" bson:"role"`
	Content   string           `json:"content" bson:"content"`
	Timestamp time.Time        `json:"timestamp" bson:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Conversation is an ordered, append-only sequence of messages belonging
// to one user.
type Conversation struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Title     string             `json:"title" bson:"title"`
	Topic     string             `json:"topic" bson:"topic"`
	Messages  []Message          `json:"messages" bson:"messages"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Summary is the list-view projection of a conversation.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Topic        string    `json:"topic"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const maxTitleLen = 30

// TitleFromMessage derives a conversation title from the first user
// message: a prefix of at most 30 characters, with an ellipsis when
// truncated.
func TitleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLen {
		return message
	}
	return string(runes[:maxTitleLen]) + "..."
}
