// Package config assembles process configuration from .env, an optional YAML
// file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tripwise/models"
)

const DefaultLLMTimeout = 30 * time.Second

// analyzeBudgetFactor covers a full generation chain across three providers
// plus one provider timeout of critiques.
const analyzeBudgetFactor = 4

// Provider configures one language-model adapter.
type Provider struct {
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	// APIKey is the process-wide default key; only ever read from the environment.
	APIKey string `yaml:"-"`
}

type Config struct {
	Env           string
	Port          string
	PublicURL     string
	LogLevel      string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	JWTSecret     string
	EncryptionKey string

	LLMTimeout time.Duration
	// AnalyzeBudget bounds one whole analyze run (generation plus critiques).
	// Zero derives it from LLMTimeout.
	AnalyzeBudget time.Duration
	Gemini        Provider
	OpenAI        Provider
	Anthropic     Provider
}

type fileConfig struct {
	Port      string `yaml:"port"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	Mongo     struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	LLM struct {
		Timeout   string   `yaml:"timeout"`
		Budget    string   `yaml:"budget"`
		Gemini    Provider `yaml:"gemini"`
		OpenAI    Provider `yaml:"openai"`
		Anthropic Provider `yaml:"anthropic"`
	} `yaml:"llm"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:        "development",
		Port:       ":8080",
		PublicURL:  "http://localhost:8080",
		LogLevel:   "info",
		MongoURI:   "mongodb://localhost:27017",
		MongoDB:    "tripwise",
		RedisAddr:  "localhost:6379",
		LLMTimeout: DefaultLLMTimeout,
		Gemini:     Provider{Model: "gemini-2.0-flash", MaxTokens: 8192},
		OpenAI:     Provider{Model: "gpt-4o", MaxTokens: 4096},
		Anthropic:  Provider{Model: "claude-3-5-sonnet-20241022", MaxTokens: 4096},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then environment overrides. The bool reports whether a .env file was found.
func Load(path string) (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, dotenv, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, dotenv, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return cfg, dotenv, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&c.Port, f.Port)
	setIf(&c.PublicURL, f.PublicURL)
	setIf(&c.LogLevel, f.LogLevel)
	setIf(&c.MongoURI, f.Mongo.URI)
	setIf(&c.MongoDB, f.Mongo.Database)
	setIf(&c.RedisAddr, f.Redis.Addr)
	if f.LLM.Timeout != "" {
		d, err := time.ParseDuration(f.LLM.Timeout)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		c.LLMTimeout = d
	}
	if f.LLM.Budget != "" {
		d, err := time.ParseDuration(f.LLM.Budget)
		if err != nil {
			return fmt.Errorf("llm.budget: %w", err)
		}
		c.AnalyzeBudget = d
	}
	mergeProvider(&c.Gemini, f.LLM.Gemini)
	mergeProvider(&c.OpenAI, f.LLM.OpenAI)
	mergeProvider(&c.Anthropic, f.LLM.Anthropic)
	return nil
}

func (c *Config) mergeEnv() error {
	setIf(&c.Env, os.Getenv("APP_ENV"))
	setIf(&c.Port, os.Getenv("PORT"))
	setIf(&c.PublicURL, os.Getenv("PUBLIC_URL"))
	setIf(&c.LogLevel, os.Getenv("LOG_LEVEL"))
	setIf(&c.MongoURI, os.Getenv("MONGO_URI"))
	setIf(&c.MongoDB, os.Getenv("MONGO_DB"))
	setIf(&c.RedisAddr, os.Getenv("REDIS_ADDR"))
	setIf(&c.JWTSecret, os.Getenv("JWT_SECRET"))
	setIf(&c.EncryptionKey, os.Getenv("ENCRYPTION_KEY"))
	setIf(&c.Gemini.APIKey, os.Getenv("GEMINI_API_KEY"))
	setIf(&c.OpenAI.APIKey, os.Getenv("OPENAI_API_KEY"))
	setIf(&c.Anthropic.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	setIf(&c.Gemini.Model, os.Getenv("GEMINI_MODEL"))
	setIf(&c.OpenAI.Model, os.Getenv("OPENAI_MODEL"))
	setIf(&c.Anthropic.Model, os.Getenv("ANTHROPIC_MODEL"))

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLMTimeout = d
	}
	if v := os.Getenv("ANALYZE_BUDGET"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ANALYZE_BUDGET: %w", err)
		}
		c.AnalyzeBudget = d
	}

	if c.Port != "" && c.Port[0] != ':' {
		c.Port = ":" + c.Port
	}
	return nil
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.LLMTimeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	switch {
	case c.AnalyzeBudget < 0:
		return errors.New("analyze budget must not be negative")
	case c.AnalyzeBudget == 0:
		c.AnalyzeBudget = analyzeBudgetFactor * c.LLMTimeout
	}
	if c.JWTSecret == "" {
		if c.Env == "production" {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-key"
	}
	return nil
}

// DefaultKeys returns the environment-provided key per provider.
func (c *Config) DefaultKeys() map[models.Provider]string {
	return map[models.Provider]string{
		models.ProviderGemini:    c.Gemini.APIKey,
		models.ProviderOpenAI:    c.OpenAI.APIKey,
		models.ProviderAnthropic: c.Anthropic.APIKey,
	}
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func mergeProvider(dst *Provider, src Provider) {
	setIf(&dst.Model, src.Model)
	setIf(&dst.BaseURL, src.BaseURL)
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
}
