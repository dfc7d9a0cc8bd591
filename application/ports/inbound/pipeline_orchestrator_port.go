package inbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// RunParams starts one orchestrator run. Events is optional; when non-nil
// the orchestrator sends progress events to it and closes it when the run
// finishes.
type RunParams struct {
	RunID   string
	Keyword string
	Events  chan<- domain.RunEvent
}

// PipelineOrchestratorPort drives the full pipeline over one batch of
// discovered items. Run always returns a report; stage failures never
// escape it.
type PipelineOrchestratorPort interface {
	Run(ctx context.Context, params RunParams) *domain.RunReport
}
