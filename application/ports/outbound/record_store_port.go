package outbound

import (
	"context"

	"github.com/DonxYu/Workflow/domain"
)

// RecordStorePort inserts one record into a named collection. The store is
// opaque key-value storage from the pipeline's point of view.
type RecordStorePort interface {
	Insert(ctx context.Context, collection string, record domain.Record) error
}
