package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/config"
)

const doneSignal = "[DONE]"

type chatRequest struct {
	Stream      bool          `json:"stream"`
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunkBody struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type rewriter struct {
	logger    outbound.LoggerPort
	llmConfig *config.LLMConfig
}

func NewRewriter(llmConfig *config.LLMConfig, logger outbound.LoggerPort) outbound.RewriterPort {
	return &rewriter{
		logger:    logger,
		llmConfig: llmConfig,
	}
}

// Rewrite streams the model's reply token by token and returns the
// concatenated text once the stream closes. The instruction template comes
// from configuration; the adapter only substitutes the note content into it.
func (r *rewriter) Rewrite(ctx context.Context, content string) (string, error) {
	req, err := r.createRequest(ctx, content)
	if err != nil {
		r.logger.Error(err, "Failed to create the rewrite request")
		return "", err
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		r.logger.Error(err, "Failed to subscribe to the rewrite stream")
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev := <-stream.Events:
			if ev.Data() == doneSignal {
				return b.String(), nil
			}
			delta, err := extractDelta(ev)
			if err != nil {
				r.logger.Error(err, "Failed to decode a rewrite stream chunk")
				return "", err
			}
			b.WriteString(delta)
		case err := <-stream.Errors:
			if err == io.EOF {
				return b.String(), nil
			}
			r.logger.Error(err, "Rewrite stream failed")
			return "", err
		}
	}
}

func extractDelta(event eventsource.Event) (string, error) {
	var chunk chatChunkBody
	if err := json.Unmarshal([]byte(event.Data()), &chunk); err != nil {
		return "", err
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

func (r *rewriter) createRequest(ctx context.Context, content string) (*http.Request, error) {
	prompt := fmt.Sprintf(r.llmConfig.RewriteTemplate, content)

	payload := chatRequest{
		Stream:      true,
		Model:       r.llmConfig.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.8,
		MaxTokens:   2200,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.llmConfig.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+r.llmConfig.APIKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
