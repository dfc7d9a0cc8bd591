package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/config"
)

type s3ArtifactStore struct {
	s3Svc         *s3.S3
	logger        outbound.LoggerPort
	storageConfig *config.StorageConfig
}

func NewS3ArtifactStore(s3Svc *s3.S3, storageConfig *config.StorageConfig, logger outbound.LoggerPort) outbound.ArtifactStorePort {
	return &s3ArtifactStore{
		s3Svc:         s3Svc,
		logger:        logger,
		storageConfig: storageConfig,
	}
}

// Store uploads a local artifact under key and returns its bucket URL.
func (s *s3ArtifactStore) Store(ctx context.Context, localPath, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(s.storageConfig.ArtifactBucket),
		Key:    aws.String(key),
		Body:   file,
	}

	if _, err := s.s3Svc.PutObjectWithContext(ctx, putInput); err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload artifact to S3", map[string]interface{}{
			"bucket": s.storageConfig.ArtifactBucket,
			"key":    key,
		})
		return "", err
	}

	artifactURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.storageConfig.ArtifactBucket, key)
	s.logger.DebugWithFields("artifact mirrored to S3", map[string]interface{}{
		"url": artifactURL,
	})

	return artifactURL, nil
}
