package outbound

import "context"

// StoryboardGeneratorPort issues one generation request and returns the raw,
// possibly prose-wrapped model response. Payload extraction and validation
// belong to the decomposer service, not the adapter.
type StoryboardGeneratorPort interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
