package config

import "os"

type ServerConfig struct {
	Addr    string
	JWKSURL string
}

func GetServerConfig() (*ServerConfig, error) {
	return &ServerConfig{
		Addr:    stringFromEnv("SERVER_ADDR", ":8080"),
		JWKSURL: os.Getenv("JWKS_URL"),
	}, nil
}
