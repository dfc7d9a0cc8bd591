package outbound

import "context"

// ArtifactStorePort mirrors a local artifact to durable object storage and
// returns its public URL.
type ArtifactStorePort interface {
	Store(ctx context.Context, localPath, key string) (string, error)
}
