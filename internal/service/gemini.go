package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
)

// Generator produces a model completion for a system prompt plus chat
// history. The final history entry is the turn being answered.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []domain.ChatMessage) (string, error)
}

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	client      *resty.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a new GeminiClient.
// Parameters:
//   - cfg: Gemini configuration including model, API key and temperature.
// Returns:
//   - *GeminiClient: initialized client.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("x-goog-api-key", cfg.APIKey)
	client.SetTimeout(60 * time.Second)

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
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
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  map[string]interface{} `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the history as alternating user/model turns with the
// system prompt on the dedicated instruction channel.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt string, history []domain.ChatMessage) (string, error) {
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		role := "model"
		if msg.Role == "user" {
			role = "user"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          contents,
		GenerationConfig: map[string]interface{}{
			"temperature": c.temperature,
		},
	}

	var result geminiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("gemini returned error %d: %s", result.Error.Code, result.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
