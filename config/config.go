package config

import (
	"errors"

	"github.com/joho/godotenv"
)

// Config groups every setting the application reads from the environment.
// Load fails before any collaborator is constructed, so a misconfigured
// process never reaches the pipeline.
type Config struct {
	Search    *SearchConfig
	LLM       *LLMConfig
	Synthesis *SynthesisConfig
	Storage   *StorageConfig
	Video     *VideoConfig
	Runtime   *RuntimeConfig
	Server    *ServerConfig
}

// Load reads optional .env files, then resolves every config group,
// collecting all failures into one error.
func Load(envFiles ...string) (*Config, error) {
	// Missing .env files are fine, real environment variables win.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	var errs []error

	var err error
	if cfg.Search, err = GetSearchConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.LLM, err = GetLLMConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Synthesis, err = GetSynthesisConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Storage, err = GetStorageConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Video, err = GetVideoConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Runtime, err = GetRuntimeConfig(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Server, err = GetServerConfig(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}
