// Package config loads application configuration from a JSON config
// file, a local .env file, and KITE_* environment variables, in
// ascending precedence over built-in defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Ollama  OllamaConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
	Search  SearchConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port   int
	APIKey string
}

type OllamaConfig struct {
	BaseURL    string
	Model      string
	EmbedModel string
}

// OpenAIConfig selects the hosted generation backend. Leaving APIKey
// empty keeps generation on the local Ollama daemon.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	DataDir    string
	SampleData bool
}

type SearchConfig struct {
	Mode      string // "lexical" or "dense"
	TopK      int
	Threshold float64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			Model:      "llama3.2",
			EmbedModel: "nomic-embed-text",
		},
		OpenAI: OpenAIConfig{
			Model:      "gpt-4o-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Storage: StorageConfig{
			DataDir:    defaultDataDir(),
			SampleData: true,
		},
		Search: SearchConfig{
			Mode:      "lexical",
			TopK:      5,
			Threshold: 0.1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/kite/config.json, then a .env file in the working
// directory, then KITE_* environment variables. Later sources win.
func Load() (Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "kite-data"
		}
	}
	return filepath.Join(dir, "kite")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "kite", "config.json")
}
