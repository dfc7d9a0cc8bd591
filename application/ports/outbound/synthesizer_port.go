package outbound

import "context"

// SynthesisRequest is one scene's rendering order. DurationSeconds is a hard
// constraint on the rendered output, passed through from the scene unchanged.
type SynthesisRequest struct {
	Prompt          string
	DurationSeconds int
	Resolution      string
	Style           string
	Motion          string
}

// SynthesizerPort submits one scene for video generation and returns the
// downloadable artifact URL.
type SynthesizerPort interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (string, error)
}
