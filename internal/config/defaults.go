package config

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          "8080",
			PublicBaseURL: "http://127.0.0.1:8080",
		},
		LLM: LLMConfig{
			Model:                "gpt-4o-mini",
			APIKey:               "${OPENAI_API_KEY}",
			Temperature:          0.2,
			MaxTokens:            4096,
			TimeoutSeconds:       120,
			RateLimit:            150,
			StructureConcurrency: 8,
		},
		Images: ImagesConfig{
			Enabled:    true,
			APIKey:     "${PEXELS_API_KEY}",
			MaxRetries: 2,
		},
		Database: DatabaseConfig{
			URL: "${DATABASE_URL}",
		},
		Auth: AuthConfig{
			IntrospectURL: "",
			StaticTokens:  map[string]string{},
		},
	}
}
