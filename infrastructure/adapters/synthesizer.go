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

type synthesisAPIRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
	Style      string `json:"style"`
	Motion     string `json:"motion"`
}

type synthesisAPIResponse struct {
	VideoURL string `json:"video_url"`
}

type synthesizer struct {
	fetcher         ContentFetcher
	logger          outbound.LoggerPort
	synthesisConfig *config.SynthesisConfig
}

func NewSynthesizer(fetcher ContentFetcher, synthesisConfig *config.SynthesisConfig, logger outbound.LoggerPort) outbound.SynthesizerPort {
	return &synthesizer{
		fetcher:         fetcher,
		logger:          logger,
		synthesisConfig: synthesisConfig,
	}
}

// Synthesize submits one scene for rendering. The duration is the scene's
// own, forwarded unchanged; an error reply surfaces with its status code and
// body so the caller can classify it.
func (s *synthesizer) Synthesize(ctx context.Context, synthesisReq outbound.SynthesisRequest) (string, error) {
	payload := synthesisAPIRequest{
		Model:      s.synthesisConfig.Model,
		Prompt:     synthesisReq.Prompt,
		Duration:   synthesisReq.DurationSeconds,
		Resolution: synthesisReq.Resolution,
		Style:      synthesisReq.Style,
		Motion:     synthesisReq.Motion,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "Failed to marshal the synthesis request")
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.synthesisConfig.BaseURL+"/video/generate", bytes.NewBuffer(body))
	if err != nil {
		s.logger.Error(err, "Failed to create the synthesis request")
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.synthesisConfig.APIKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := s.fetcher.FetchContent(req)
	if err != nil {
		return "", err
	}

	var parsed synthesisAPIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.logger.Error(err, "Failed to unmarshal the synthesis response")
		return "", fmt.Errorf("decode synthesis response: %w", err)
	}
	if parsed.VideoURL == "" {
		return "", fmt.Errorf("synthesis response carried no video URL")
	}

	return parsed.VideoURL, nil
}
