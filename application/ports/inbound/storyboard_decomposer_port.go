package inbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// StoryboardDecomposerPort turns rewritten text into an ordered scene
// sequence. The result may be shorter than sceneCount, never longer and
// never padded; an empty result with nil error means the collaborator
// produced no usable payload.
type StoryboardDecomposerPort interface {
	Decompose(ctx context.Context, content string, sceneCount int) ([]domain.Scene, error)
}
