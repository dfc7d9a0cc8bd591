package config

import "fmt"

type VideoConfig struct {
	OutputDir    string
	SceneCount   int
	SceneSeconds int
}

func GetVideoConfig() (*VideoConfig, error) {
	sceneCount, err := intFromEnv("DEFAULT_SCENE_COUNT", 3)
	if err != nil {
		return nil, err
	}
	if sceneCount <= 0 {
		return nil, fmt.Errorf("DEFAULT_SCENE_COUNT must be positive, got %d", sceneCount)
	}

	sceneSeconds, err := intFromEnv("SCENE_SECONDS", 8)
	if err != nil {
		return nil, err
	}
	if sceneSeconds <= 0 {
		return nil, fmt.Errorf("SCENE_SECONDS must be positive, got %d", sceneSeconds)
	}

	return &VideoConfig{
		OutputDir:    stringFromEnv("VIDEO_OUTPUT_DIR", "videos"),
		SceneCount:   sceneCount,
		SceneSeconds: sceneSeconds,
	}, nil
}
