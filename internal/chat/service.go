package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/progress"
	"medlama-backend/internal/user"
)

// Service orchestrates the conversation-continuity flow: load or create a
// conversation, append the user message, obtain an assistant reply,
// append it, and update usage counters.
type Service struct {
	repo     Repository
	aiClient ai.Client
	users    user.Repository
	progress progress.Repository
	log      *logger.Logger
}

func NewService(repo Repository, aiClient ai.Client, users user.Repository, prog progress.Repository, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		aiClient: aiClient,
		users:    users,
		progress: prog,
		log:      log,
	}
}

type SendMessageInput struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	LearningLevel  string `json:"learning_level"`
}

type SendMessageResult struct {
	Response         string          `json:"response"`
	Topic            string          `json:"topic"`
	AnalysisComplete bool            `json:"analysis_complete"`
	ConversationID   string          `json:"conversation_id"`
	Metadata         MessageMetadata `json:"metadata"`
}

// SendMessage runs one round trip of the chat flow. The user message is
// appended before the AI call and is not rolled back when the call fails,
// so retries against the same conversation are at-least-once.
func (s *Service) SendMessage(ctx context.Context, u *user.User, in SendMessageInput) (*SendMessageResult, error) {
	message, level, err := validateSend(u, in)
	if err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, u, in.ConversationID, message)
	if err != nil {
		return nil, err
	}

	userMsg := Message{Role: RoleUser, Content: message, Timestamp: time.Now().UTC()}
	if err := s.repo.AppendMessage(ctx, conv.ID, userMsg); err != nil {
		return nil, err
	}

	history := make([]ai.ChatMessage, 0, len(conv.Messages)+1)
	for _, m := range conv.Messages {
		history = append(history, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	history = append(history, ai.ChatMessage{Role: ai.RoleUser, Content: message})

	result, err := s.aiClient.Generate(ctx, ai.GenerateRequest{
		Messages:      history,
		LearningLevel: level,
	})
	if err != nil {
		s.log.Error("ai generation failed", "conversation_id", conv.ID.Hex(), "error", err)
		return nil, httpapi.AIService("failed to generate response")
	}

	metadata := MessageMetadata{Model: result.Model, LearningLevel: level}
	assistantMsg := Message{
		Role:      RoleAssistant,
		Content:   result.Text,
		Timestamp: time.Now().UTC(),
		Metadata:  &metadata,
	}
	if err := s.repo.AppendMessage(ctx, conv.ID, assistantMsg); err != nil {
		return nil, err
	}

	// Each message re-tags the conversation with the topic of the latest
	// exchange.
	topic := ai.InferTopic(message)
	if err := s.repo.SetTopic(ctx, conv.ID, topic); err != nil {
		s.log.Warn("failed to set conversation topic", "conversation_id", conv.ID.Hex(), "error", err)
	}

	s.recordActivity(ctx, u, topic)

	return &SendMessageResult{
		Response:         result.Text,
		Topic:            topic,
		AnalysisComplete: ai.AnalysisComplete(result.Text),
		ConversationID:   conv.ID.Hex(),
		Metadata:         metadata,
	}, nil
}

func validateSend(u *user.User, in SendMessageInput) (message, level string, err error) {
	message = strings.TrimSpace(in.Message)
	if message == "" {
		return "", "", httpapi.Validation("message is required", map[string]string{"field": "message"})
	}

	level = in.LearningLevel
	if level == "" {
		level = u.LearningLevel
	}
	if level == "" {
		level = ai.LevelMedicalStudent
	}
	if !ai.ValidLevel(level) {
		return "", "", httpapi.Validation(
			fmt.Sprintf("invalid learning level %q", in.LearningLevel),
			map[string]string{"field": "learning_level"},
		)
	}
	return message, level, nil
}

// Stream event types, in the order a successful stream emits them.
const (
	EventConversationID = "conversation_id"
	EventToken          = "token"
	EventMetadata       = "metadata"
	EventDone           = "done"
	EventError          = "error"
)

// StreamEvent is one chunk of a streaming chat response.
type StreamEvent struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Content string `json:"content,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Model   string `json:"model,omitempty"`
	Message string `json:"message,omitempty"`
}

// StreamMessage runs the chat flow like SendMessage but relays the reply
// incrementally through send: conversation_id first, then one token event
// per model chunk, then metadata and done. Validation failures are
// returned before any event is sent; once streaming has started, failures
// become error events.
func (s *Service) StreamMessage(ctx context.Context, u *user.User, in SendMessageInput, send func(StreamEvent) error) error {
	message, level, err := validateSend(u, in)
	if err != nil {
		return err
	}

	conv, err := s.resolveConversation(ctx, u, in.ConversationID, message)
	if err != nil {
		return err
	}

	userMsg := Message{Role: RoleUser, Content: message, Timestamp: time.Now().UTC()}
	if err := s.repo.AppendMessage(ctx, conv.ID, userMsg); err != nil {
		return err
	}

	if err := send(StreamEvent{Type: EventConversationID, ID: conv.ID.Hex()}); err != nil {
		return err
	}

	history := make([]ai.ChatMessage, 0, len(conv.Messages)+1)
	for _, m := range conv.Messages {
		history = append(history, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	history = append(history, ai.ChatMessage{Role: ai.RoleUser, Content: message})

	result, err := s.aiClient.GenerateStream(ctx, ai.GenerateRequest{
		Messages:      history,
		LearningLevel: level,
	}, func(token string) error {
		return send(StreamEvent{Type: EventToken, Content: token})
	})
	if err != nil {
		s.log.Error("ai streaming failed", "conversation_id", conv.ID.Hex(), "error", err)
		return send(StreamEvent{Type: EventError, Message: "failed to generate response"})
	}

	metadata := MessageMetadata{Model: result.Model, LearningLevel: level}
	assistantMsg := Message{
		Role:      RoleAssistant,
		Content:   result.Text,
		Timestamp: time.Now().UTC(),
		Metadata:  &metadata,
	}
	if err := s.repo.AppendMessage(ctx, conv.ID, assistantMsg); err != nil {
		return err
	}

	topic := ai.InferTopic(message)
	if err := s.repo.SetTopic(ctx, conv.ID, topic); err != nil {
		s.log.Warn("failed to set conversation topic", "conversation_id", conv.ID.Hex(), "error", err)
	}

	s.recordActivity(ctx, u, topic)

	if err := send(StreamEvent{Type: EventMetadata, Topic: topic, Model: result.Model}); err != nil {
		return err
	}
	return send(StreamEvent{Type: EventDone})
}

type VisualResult struct {
	VisualDescription string `json:"visual_description"`
	Topic             string `json:"topic"`
}

// Visual asks the model for an annotated ASCII diagram of a topic.
func (s *Service) Visual(ctx context.Context, u *user.User, topic string) (*VisualResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, httpapi.Validation("topic is required", map[string]string{"field": "topic"})
	}

	level := u.LearningLevel
	if level == "" {
		level = ai.LevelMedicalStudent
	}

	result, err := s.aiClient.Generate(ctx, ai.GenerateRequest{
		Messages:      []ai.ChatMessage{{Role: ai.RoleUser, Content: ai.VisualPrompt(topic)}},
		LearningLevel: level,
	})
	if err != nil {
		s.log.Error("visual generation failed", "topic", topic, "error", err)
		return nil, httpapi.AIService("failed to generate visual")
	}

	return &VisualResult{VisualDescription: result.Text, Topic: topic}, nil
}

func (s *Service) resolveConversation(ctx context.Context, u *user.User, conversationID, message string) (*Conversation, error) {
	if conversationID != "" {
		id, err := primitive.ObjectIDFromHex(conversationID)
		if err != nil {
			return nil, httpapi.Validation("invalid conversation_id", map[string]string{"field": "conversation_id"})
		}
		conv, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, httpapi.NotFound("conversation")
			}
			return nil, err
		}
		if conv.UserID != u.ID {
			// Conversations are never shared across users.
			return nil, httpapi.NotFound("conversation")
		}
		return conv, nil
	}

	conv := &Conversation{
		UserID: u.ID,
		Title:  TitleFromMessage(message),
		Topic:  ai.InferTopic(message),
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	s.log.Debug("created conversation", "conversation_id", conv.ID.Hex(), "topic", conv.Topic)
	return conv, nil
}

// recordActivity bumps the user's message counter and per-topic progress.
// Counter failures are logged and swallowed; the chat reply already
// succeeded.
func (s *Service) recordActivity(ctx context.Context, u *user.User, topic string) {
	prog, err := s.progress.GetOrCreate(ctx, u.ID)
	if err != nil {
		s.log.Warn("failed to load progress", "error", err)
		return
	}
	prog.UpdateStreak(time.Now().UTC())
	prog.UpdateTopic(topic, func(tp *progress.TopicProgress) {
		tp.LessonsCompleted++
	})
	if err := s.progress.Save(ctx, prog); err != nil {
		s.log.Warn("failed to save progress", "error", err)
	}

	stats := u.Stats
	stats.TotalMessages++
	stats.TotalLessons++
	stats.Streak = prog.CurrentStreak
	if err := s.users.UpdateStats(ctx, u.ID, stats); err != nil {
		s.log.Warn("failed to update user stats", "error", err)
		return
	}
	u.Stats = stats
}

// List returns newest-updated-first summaries of the user's conversations.
func (s *Service) List(ctx context.Context, u *user.User, limit, skip int64) ([]Summary, int64, error) {
	conversations, err := s.repo.ListByUser(ctx, u.ID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]Summary, 0, len(conversations))
	for _, c := range conversations {
		summaries = append(summaries, Summary{
			ID:           c.ID.Hex(),
			Title:        c.Title,
			Topic:        c.Topic,
			MessageCount: len(c.Messages),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return summaries, total, nil
}

// Get returns a conversation with its full message history, scoped to the
// requesting user.
func (s *Service) Get(ctx context.Context, u *user.User, conversationID string) (*Conversation, error) {
	id, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, httpapi.Validation("invalid conversation_id", map[string]string{"field": "conversation_id"})
	}
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpapi.NotFound("conversation")
		}
		return nil, err
	}
	if conv.UserID != u.ID {
		return nil, httpapi.NotFound("conversation")
	}
	return conv, nil
}

// Delete removes a conversation. Subsequent lookups return not found.
func (s *Service) Delete(ctx context.Context, u *user.User, conversationID string) error {
	conv, err := s.Get(ctx, u, conversationID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpapi.NotFound("conversation")
		}
		return err
	}
	return nil
}
