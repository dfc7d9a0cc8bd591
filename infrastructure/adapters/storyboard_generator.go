package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/config"
)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type storyboardGenerator struct {
	fetcher   ContentFetcher
	logger    outbound.LoggerPort
	llmConfig *config.LLMConfig
}

func NewStoryboardGenerator(fetcher ContentFetcher, llmConfig *config.LLMConfig, logger outbound.LoggerPort) outbound.StoryboardGeneratorPort {
	return &storyboardGenerator{
		fetcher:   fetcher,
		logger:    logger,
		llmConfig: llmConfig,
	}
}

// Generate issues one non-streaming completion request and returns the raw
// model reply. The decomposer owns extracting the structured payload out of
// whatever prose surrounds it.
func (g *storyboardGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       g.llmConfig.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   3000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error(err, "Failed to marshal the storyboard request")
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.llmConfig.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		g.logger.Error(err, "Failed to create the storyboard request")
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.llmConfig.APIKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := g.fetcher.FetchContent(req)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		g.logger.Error(err, "Failed to unmarshal the storyboard response")
		return "", fmt.Errorf("decode storyboard response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("storyboard response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
