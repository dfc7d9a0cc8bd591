package outbound

import "context"

// ArtifactDownloaderPort streams one remote artifact to a local path.
type ArtifactDownloaderPort interface {
	Download(ctx context.Context, url, destPath string) error
}
