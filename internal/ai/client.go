package ai

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of conversation history handed to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest carries the full message history (newest last) and the
// learning level that selects the system prompt.
type GenerateRequest struct {
	Messages      []ChatMessage
	LearningLevel string
}

// GenerateResult is the raw model output plus the model that produced it.
type GenerateResult struct {
	Text  string
	Model string
}

// Client abstracts the remote text-generation service. A single call is
// made per request; failures propagate to the caller untouched.
//
// GenerateStream invokes onToken for each text chunk as it arrives and
// returns the accumulated result. An onToken error aborts the stream.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	GenerateStream(ctx context.Context, req GenerateRequest, onToken func(token string) error) (*GenerateResult, error)
	Ping(ctx context.Context) error
}
