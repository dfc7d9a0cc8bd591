package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
)

type artifactDownloader struct {
	client *http.Client
	logger outbound.LoggerPort
}

// NewArtifactDownloader builds the artifact download adapter. It uses an
// unbounded client timeout; callers bound downloads through ctx because
// rendered videos can be large.
func NewArtifactDownloader(logger outbound.LoggerPort) outbound.ArtifactDownloaderPort {
	return &artifactDownloader{
		client: &http.Client{},
		logger: logger,
	}
}

// Download streams url into destPath. A partial file left by a failed
// transfer is removed so retries start clean.
func (d *artifactDownloader) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := d.client.Do(req)
	if err != nil {
		d.logger.ErrorWithFields(err, "Failed to request the artifact", map[string]interface{}{
			"url": url,
		})
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &domain.StatusError{StatusCode: res.StatusCode}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}

	if _, err := io.Copy(file, res.Body); err != nil {
		file.Close()
		os.Remove(destPath)
		d.logger.ErrorWithFields(err, "Failed to write the artifact", map[string]interface{}{
			"url":  url,
			"path": destPath,
		})
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(destPath)
		return err
	}

	d.logger.DebugWithFields("artifact downloaded", map[string]interface{}{
		"url":  url,
		"path": destPath,
	})
	return nil
}
