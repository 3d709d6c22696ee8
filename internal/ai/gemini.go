package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiConfig tunes the remote generation call.
type GeminiConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type geminiClient struct {
	apiKey     string
	cfg        GeminiConfig
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient builds a Client backed by the Gemini generateContent
// REST API. One request per Generate call; no retry or backoff.
func NewGeminiClient(apiKey string, cfg GeminiConfig) Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	return &geminiClient{
		apiKey:  apiKey,
		cfg:     cfg,
		baseURL: geminiAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) newRequest(ctx context.Context, method string, req GenerateRequest) (*http.Request, error) {
	contents := make([]geminiContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			// Gemini names the assistant role "model".
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: SystemPrompt(req.LearningLevel)}},
		},
		Contents: contents,
		GenerationConfig: geminiGenConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:%s?key=%s", c.baseURL, c.cfg.Model, method, c.apiKey)
	if method == "streamGenerateContent" {
		url += "&alt=sse"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	httpReq, err := c.newRequest(ctx, "generateContent", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API error: %s - %s", resp.Status, string(respBody))
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}

	return &GenerateResult{Text: text, Model: c.cfg.Model}, nil
}

// GenerateStream calls the streaming variant of the API and relays each
// text chunk through onToken as the server sends it.
func (c *geminiClient) GenerateStream(ctx context.Context, req GenerateRequest, onToken func(token string) error) (*GenerateResult, error) {
	httpReq, err := c.newRequest(ctx, "streamGenerateContent", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API error: %s - %s", resp.Status, string(respBody))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		for _, part := range chunk.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			full.WriteString(part.Text)
			if err := onToken(part.Text); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	if full.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return &GenerateResult{Text: full.String(), Model: c.cfg.Model}, nil
}

// Ping fetches the model's metadata record, which verifies the endpoint,
// model name, and API key without consuming generation quota.
func (c *geminiClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, c.cfg.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini API error: %s", resp.Status)
	}
	return nil
}
