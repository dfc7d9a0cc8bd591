package config

import (
	"fmt"
	"os"
)

type SearchConfig struct {
	Cookie      string
	BaseURL     string
	NoteType    int
	Sort        int
	TotalNumber int
}

func GetSearchConfig() (*SearchConfig, error) {
	cookie := os.Getenv("SEARCH_COOKIE")
	if cookie == "" {
		return nil, fmt.Errorf("SEARCH_COOKIE must be set")
	}

	noteType, err := intFromEnv("NOTE_TYPE", 2)
	if err != nil {
		return nil, err
	}
	if noteType < 0 || noteType > 2 {
		return nil, fmt.Errorf("NOTE_TYPE must be 0, 1 or 2, got %d", noteType)
	}

	sort, err := intFromEnv("SORT", 2)
	if err != nil {
		return nil, err
	}
	if sort < 0 || sort > 2 {
		return nil, fmt.Errorf("SORT must be 0, 1 or 2, got %d", sort)
	}

	totalNumber, err := intFromEnv("TOTAL_NUMBER", 2)
	if err != nil {
		return nil, err
	}
	if totalNumber <= 0 {
		return nil, fmt.Errorf("TOTAL_NUMBER must be positive, got %d", totalNumber)
	}

	return &SearchConfig{
		Cookie:      cookie,
		BaseURL:     stringFromEnv("SEARCH_BASE_URL", "https://edith.xiaohongshu.com"),
		NoteType:    noteType,
		Sort:        sort,
		TotalNumber: totalNumber,
	}, nil
}
