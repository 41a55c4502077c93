// Package symptom wraps the Groq chat completions API for AI symptom analysis.
package symptom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNoAPIKey      = errors.New("symptom checker is not configured")
	ErrEmptySymptoms = errors.New("symptoms description is required")
)

const systemPrompt = "You are a helpful medical assistant. Provide clear, informative, and responsible medical guidance. Always emphasize the importance of consulting healthcare professionals."

const userPromptTemplate = `You are a medical assistant helping to analyze symptoms.
Please provide a helpful analysis of the following symptoms:

Symptoms: %s

Please provide:
1. Possible conditions or causes (with appropriate disclaimers)
2. General recommendations (with emphasis on consulting a healthcare professional)
3. When to seek immediate medical attention
4. General self-care tips if applicable

Important: This is not a substitute for professional medical advice. Always consult with a qualified healthcare provider for proper diagnosis and treatment.

Format your response in clear, easy-to-read markdown format.`

// Client calls the Groq chat completions endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a symptom checker client. Returns nil when no API key is
// configured; callers treat a nil client as "feature disabled".
func NewClient(apiURL, apiKey, model string) *Client {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Analyze sends the symptom description to the model and returns its
// markdown analysis.
func (c *Client) Analyze(ctx context.Context, symptoms string) (string, error) {
	if c == nil {
		return "", ErrNoAPIKey
	}
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return "", ErrEmptySymptoms
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, symptoms)},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: HTTP %d", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(resp.StatusCode, &parsed)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// apiError turns upstream failures into user-friendly messages, like the
// error mapping the mobile clients already expect.
func apiError(status int, parsed *chatResponse) error {
	detail := ""
	if parsed.Error != nil {
		detail = parsed.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("invalid Groq API key, please check your API key and try again")
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("API rate limit exceeded, please try again later")
	case strings.Contains(strings.ToLower(detail), "model"):
		return fmt.Errorf("model unavailable, please try again later")
	case detail != "":
		return fmt.Errorf("symptom analysis failed: %s", detail)
	default:
		return fmt.Errorf("symptom analysis failed: HTTP %d", status)
	}
}
