package outbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// SearchQuery carries the discovery parameters. NoteType and Sort use the
// collaborator's enumerations (0..2); Limit caps the result count.
type SearchQuery struct {
	Keyword  string
	NoteType int
	Sort     int
	Limit    int
}

// NoteSearcherPort discovers source items by keyword. The returned list is
// ordered and may be shorter than Limit.
type NoteSearcherPort interface {
	Search(ctx context.Context, query SearchQuery) ([]domain.SourceItem, error)
}
