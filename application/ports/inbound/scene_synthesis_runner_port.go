package inbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// SceneSynthesisRunnerPort synthesizes every scene of one item. It returns
// exactly one outcome per input scene, in the input order, regardless of
// completion order or individual failures.
type SceneSynthesisRunnerPort interface {
	SynthesizeAll(ctx context.Context, scenes []domain.Scene) []domain.SynthesisOutcome
}
