package config

import (
	"fmt"
	"os"
)

type SynthesisConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Resolution string
	Style      string
	Motion     string
}

func GetSynthesisConfig() (*SynthesisConfig, error) {
	apiKey := os.Getenv("SYNTHESIS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SYNTHESIS_API_KEY must be set")
	}

	return &SynthesisConfig{
		APIKey:     apiKey,
		BaseURL:    stringFromEnv("SYNTHESIS_BASE_URL", "https://api.siliconflow.cn"),
		Model:      stringFromEnv("SYNTHESIS_MODEL", "tencent/HunyuanVideo"),
		Resolution: stringFromEnv("VIDEO_RESOLUTION", "720p"),
		Style:      stringFromEnv("VIDEO_STYLE", "realistic"),
		Motion:     stringFromEnv("VIDEO_MOTION", "medium"),
	}, nil
}
