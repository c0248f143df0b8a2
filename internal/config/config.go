package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration, read once at startup.
type Config struct {
	DatabaseURI string
	Port        string
	CORSOrigin  string
	Model       ModelConfig
	Generation  GenerationConfig
}

// ModelConfig holds paths for the local causal language model.
type ModelConfig struct {
	ModelPath  string
	VocabPath  string
	MergesPath string
	LibPath    string
}

// GenerationConfig holds explanation-generation settings.
type GenerationConfig struct {
	Enabled bool
	// Mode controls what lands in the explanation field: "full" prepends the
	// rendered prompt and the "AI Reasoning:" separator, "reasoning" returns
	// the model continuation alone.
	Mode    string
	Timeout time.Duration
}

const (
	ModeFull      = "full"
	ModeReasoning = "reasoning"
)

// Load reads configuration from environment variables. DATABASE_URI is the
// only required value; everything else has a default.
func Load() (Config, error) {
	uri := os.Getenv("DATABASE_URI")
	if uri == "" {
		return Config{}, fmt.Errorf("DATABASE_URI not set; the storage connection string is required")
	}

	mode := getenv("EXPLANATION_MODE", ModeFull)
	if mode != ModeFull && mode != ModeReasoning {
		return Config{}, fmt.Errorf("EXPLANATION_MODE must be %q or %q, got %q", ModeFull, ModeReasoning, mode)
	}

	return Config{
		DatabaseURI: uri,
		Port:        getenv("PORT", "8080"),
		CORSOrigin:  getenv("CORS_ORIGIN", "http://localhost:5173"),
		Model: ModelConfig{
			ModelPath:  getenv("MODEL_PATH", "models/distilgpt2.onnx"),
			VocabPath:  getenv("VOCAB_PATH", "models/vocab.json"),
			MergesPath: getenv("MERGES_PATH", "models/merges.txt"),
			LibPath:    getenv("ONNX_LIB_PATH", "models/libonnxruntime.so"),
		},
		Generation: GenerationConfig{
			Enabled: getenvBool("ENABLE_GENERATION", true),
			Mode:    mode,
			Timeout: time.Duration(getenvInt("GENERATION_TIMEOUT_SECONDS", 30)) * time.Second,
		},
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
