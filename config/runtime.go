package config

import (
	"fmt"
	"strings"
	"time"
)

type RuntimeConfig struct {
	LogLevel        string
	RequestTimeout  time.Duration
	MaxRetries      int
	ItemConcurrency int
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func GetRuntimeConfig() (*RuntimeConfig, error) {
	logLevel := strings.ToUpper(stringFromEnv("LOG_LEVEL", "INFO"))
	switch logLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", logLevel)
	}

	timeoutSeconds, err := intFromEnv("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", timeoutSeconds)
	}

	maxRetries, err := intFromEnv("MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if maxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative, got %d", maxRetries)
	}

	itemConcurrency, err := intFromEnv("ITEM_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	if itemConcurrency <= 0 {
		return nil, fmt.Errorf("ITEM_CONCURRENCY must be positive, got %d", itemConcurrency)
	}

	rateLimitMax, err := intFromEnv("RATE_LIMIT_MAX", 10)
	if err != nil {
		return nil, err
	}
	if rateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", rateLimitMax)
	}

	windowSeconds, err := intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %d", windowSeconds)
	}

	return &RuntimeConfig{
		LogLevel:        logLevel,
		RequestTimeout:  time.Duration(timeoutSeconds) * time.Second,
		MaxRetries:      maxRetries,
		ItemConcurrency: itemConcurrency,
		RateLimitMax:    rateLimitMax,
		RateLimitWindow: time.Duration(windowSeconds) * time.Second,
	}, nil
}
