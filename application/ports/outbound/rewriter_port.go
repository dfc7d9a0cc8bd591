package outbound

import "context"

// RewriterPort rewrites one note's content through the language model. The
// instruction template is configuration owned by the adapter, not logic the
// caller interprets.
type RewriterPort interface {
	Rewrite(ctx context.Context, content string) (string, error)
}
