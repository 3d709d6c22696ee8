package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*geminiClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient("test-key", GeminiConfig{
		Model:       "gemini-1.5-flash",
		Temperature: 0.7,
		MaxTokens:   2048,
	}).(*geminiClient)
	c.baseURL = srv.URL
	return c, srv
}

func TestGeminiGenerate(t *testing.T) {
	var captured geminiRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "The heart "}, {"text": "pumps blood."}},
				}},
			},
		})
	})

	result, err := client.Generate(context.Background(), GenerateRequest{
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "Explain the cardiac cycle"},
			{Role: RoleAssistant, Content: "Sure."},
			{Role: RoleUser, Content: "Go on"},
		},
		LearningLevel: LevelBeginner,
	})
	require.NoError(t, err)
	assert.Equal(t, "The heart pumps blood.", result.Text)
	assert.Equal(t, "gemini-1.5-flash", result.Model)

	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, SystemPrompt(LevelBeginner), captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, 0.7, captured.GenerationConfig.Temperature)
	assert.Equal(t, 2048, captured.GenerationConfig.MaxOutputTokens)
}

func TestGeminiGenerateErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})
		_, err := client.Generate(context.Background(), GenerateRequest{
			Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("no candidates", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		})
		_, err := client.Generate(context.Background(), GenerateRequest{
			Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		})
		assert.Error(t, err)
	})
}

func TestGeminiGenerateStream(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-1.5-flash:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(
			"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"The heart \"}]}}]}\n\n" +
				"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"pumps blood.\"}]}}]}\n\n"))
	})

	var tokens []string
	result, err := client.GenerateStream(context.Background(), GenerateRequest{
		Messages: []ChatMessage{{Role: RoleUser, Content: "Explain the cardiac cycle"}},
	}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"The heart ", "pumps blood."}, tokens)
	assert.Equal(t, "The heart pumps blood.", result.Text)
}

func TestGeminiPingUsesModelMetadata(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"name": "models/gemini-1.5-flash"}`))
	})

	require.NoError(t, client.Ping(context.Background()))

	// Reachability checks read the model record; they never invoke
	// generation.
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "/gemini-1.5-flash", path)
	assert.NotContains(t, path, "generateContent")
}

func TestGeminiPingFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	})
	assert.Error(t, client.Ping(context.Background()))
}
