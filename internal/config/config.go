package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug    bool           `yaml:"debug"`
	LLM      LLMConfig      `yaml:"llm"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Index    IndexConfig    `yaml:"index"`
	Profile  ProfileConfig  `yaml:"profile"`
	Chat     ChatConfig     `yaml:"chat"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
}

// LLMConfig describes one model endpoint. Provider is "openai" or "ollama".
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	KeyEnv      string  `yaml:"key_env"`
	Key         string  `yaml:"-" json:"-"`
	Temperature float64 `yaml:"temperature"`
	BatchSize   int     `yaml:"batch_size"`
}

type RAGConfig struct {
	ContentDir       string   `yaml:"content_dir"`
	Extensions       []string `yaml:"extensions"`
	ChunkSize        int      `yaml:"chunk_size"`
	ChunkOverlap     *int     `yaml:"chunk_overlap"`
	TopK             int      `yaml:"top_k"`
	FetchK           int      `yaml:"fetch_k"`
	LambdaMult       *float64 `yaml:"lambda_mult"`
	Compress         *bool    `yaml:"compress"`
	CondenseQuestion *bool    `yaml:"condense_question"`
}

// IndexConfig addresses the persisted index by its (folder, name) pair.
type IndexConfig struct {
	Folder          string `yaml:"folder"`
	Name            string `yaml:"name"`
	FreshnessPolicy string `yaml:"freshness_policy"`
	EncryptionKey   string `yaml:"encryption_key" json:"-"`
}

type ProfileConfig struct {
	ResumePath            string `yaml:"resume_path"`
	WriteupPath           string `yaml:"writeup_path"`
	JobQualificationsPath string `yaml:"job_qualifications_path"`
}

type ChatConfig struct {
	MaxPromptTurns int    `yaml:"max_prompt_turns"`
	RevealDelayMS  *int   `yaml:"reveal_delay_ms"`
	Greeting       string `yaml:"greeting"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn" json:"-"`
	Password string `yaml:"password" json:"-"`
	Debug    bool   `yaml:"debug"`
}

type CacheConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	Password   string `yaml:"password" json:"-"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads the YAML file at path, applies defaults and resolves API keys.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	if err != nil {
		return nil, err
	}
	cfg.LLM.Key = lookupKey(cfg.LLM.KeyEnv, env)
	cfg.EmbedLLM.Key = lookupKey(cfg.EmbedLLM.KeyEnv, env)
	return &cfg, nil
}

// chromem-go encrypts exports with AES-256.
const encryptionKeyLen = 32

// Validate rejects settings that would only fail later, deep inside a command.
func (c *Config) Validate() error {
	if n := len(c.Index.EncryptionKey); n != 0 && n != encryptionKeyLen {
		return fmt.Errorf("index.encryption_key must be %d bytes long, got %d", encryptionKeyLen, n)
	}
	return nil
}

// readDotEnv merges the first existing .env files without touching the process environment.
func readDotEnv(paths ...string) (map[string]string, error) {
	merged := map[string]string{}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// process environment wins over .env
func lookupKey(name string, env map[string]string) string {
	if name == "" {
		return ""
	}
	if v := os.Getenv(name); v != "" {
		return v
	}
	return env[name]
}
