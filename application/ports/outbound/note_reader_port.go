package outbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// NoteReaderPort retrieves the content behind one note URL. A missing page
// is reported as domain.ErrContentNotFound, never as a panic or a nil
// result with nil error.
type NoteReaderPort interface {
	Read(ctx context.Context, noteURL string) (*domain.RetrievedContent, error)
}
