package config

import (
	"fmt"
	"os"
	"strings"
)

const defaultRewriteTemplate = "Rewrite the following note into a vivid, engaging short story suitable " +
	"for a narrated video. Keep the original meaning, tighten the pacing and " +
	"return only the rewritten text.\n\n%s"

type LLMConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	RewriteTemplate string
}

func GetLLMConfig() (*LLMConfig, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY must be set")
	}

	template := stringFromEnv("REWRITE_PROMPT_TEMPLATE", defaultRewriteTemplate)
	if !strings.Contains(template, "%s") {
		return nil, fmt.Errorf("REWRITE_PROMPT_TEMPLATE must contain a %%s placeholder for the note content")
	}

	return &LLMConfig{
		APIKey:          apiKey,
		BaseURL:         stringFromEnv("LLM_BASE_URL", "https://api.deepseek.com"),
		Model:           stringFromEnv("LLM_MODEL", "deepseek-chat"),
		RewriteTemplate: template,
	}, nil
}
