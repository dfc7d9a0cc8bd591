package config

import (
	"fmt"
	"os"
)

type StorageConfig struct {
	RawTable       string
	ProcessedTable string
	ArtifactBucket string
	Region         string
}

func GetStorageConfig() (*StorageConfig, error) {
	rawTable := os.Getenv("RAW_TABLE_NAME")
	if rawTable == "" {
		return nil, fmt.Errorf("RAW_TABLE_NAME must be set")
	}

	processedTable := os.Getenv("PROCESSED_TABLE_NAME")
	if processedTable == "" {
		return nil, fmt.Errorf("PROCESSED_TABLE_NAME must be set")
	}

	return &StorageConfig{
		RawTable:       rawTable,
		ProcessedTable: processedTable,
		ArtifactBucket: os.Getenv("ARTIFACT_BUCKET"),
		Region:         stringFromEnv("REGION", "us-east-1"),
	}, nil
}
