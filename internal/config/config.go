// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Password   string        `yaml:"password"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DialogConfig struct {
	QueryIntent         string   `yaml:"query_intent"`
	ResetTrigger        string   `yaml:"reset_trigger"`
	YesWords            []string `yaml:"yes_words"`
	NoWords             []string `yaml:"no_words"`
	PromptAttempts      int      `yaml:"prompt_attempts"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	Locale              string   `yaml:"locale"`
}

type NLUConfig struct {
	Provider   string        `yaml:"provider"` // openai | keyword
	OpenAIKey  string        `yaml:"openai_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	Areas      []string      `yaml:"areas"`      // keyword provider vocabulary
	Categories []string      `yaml:"categories"` // keyword provider vocabulary
	Keywords   []string      `yaml:"keywords"`   // keyword provider intent cues
}

type ChannelConfig struct {
	Mode     string        `yaml:"mode"` // webhook | log
	ReplyURL string        `yaml:"reply_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ConversationConfig struct {
	Store     string        `yaml:"store"` // memory | redis
	TTL       time.Duration `yaml:"ttl"`
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // optional; enables the turn audit log
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Admin        AdminConfig        `yaml:"admin"`
	Log          LogConfig          `yaml:"log"`
	Dialog       DialogConfig       `yaml:"dialog"`
	NLU          NLUConfig          `yaml:"nlu"`
	Channel      ChannelConfig      `yaml:"channel"`
	Conversation ConversationConfig `yaml:"conversation"`
	Redis        RedisConfig        `yaml:"redis"`
	Database     DatabaseConfig     `yaml:"database"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3978
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Dialog.QueryIntent == "" {
		cfg.Dialog.QueryIntent = "getRestaurant"
	}
	if cfg.Dialog.ResetTrigger == "" {
		cfg.Dialog.ResetTrigger = "リセット"
	}
	if len(cfg.Dialog.YesWords) == 0 {
		cfg.Dialog.YesWords = []string{"はい", "yes", "y"}
	}
	if len(cfg.Dialog.NoWords) == 0 {
		cfg.Dialog.NoWords = []string{"いいえ", "no", "n"}
	}
	if cfg.Dialog.PromptAttempts <= 0 {
		cfg.Dialog.PromptAttempts = 3
	}
	if cfg.Dialog.ConfidenceThreshold <= 0 {
		cfg.Dialog.ConfidenceThreshold = 0.5
	}
	if cfg.Dialog.Locale == "" {
		cfg.Dialog.Locale = "ja"
	}
	if cfg.NLU.Provider == "" {
		cfg.NLU.Provider = "keyword"
	}
	if cfg.NLU.Model == "" {
		cfg.NLU.Model = "gpt-4o-mini"
	}
	if cfg.NLU.Timeout <= 0 {
		cfg.NLU.Timeout = 10 * time.Second
	}
	if cfg.Channel.Mode == "" {
		cfg.Channel.Mode = "log"
	}
	if cfg.Channel.Timeout <= 0 {
		cfg.Channel.Timeout = 10 * time.Second
	}
	if cfg.Conversation.Store == "" {
		cfg.Conversation.Store = "memory"
	}
	if cfg.Conversation.TTL <= 0 {
		cfg.Conversation.TTL = 15 * time.Minute
	}
	if cfg.Conversation.Workers <= 0 {
		cfg.Conversation.Workers = 8
	}
	if cfg.Conversation.QueueSize <= 0 {
		cfg.Conversation.QueueSize = cfg.Conversation.Workers * 4
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
}

// Minimal validation
func (cfg *Config) validate() error {
	if cfg.NLU.Provider == "openai" && cfg.NLU.OpenAIKey == "" {
		return errors.New("nlu.openai_key is required when nlu.provider is openai")
	}
	if cfg.Channel.Mode == "webhook" && cfg.Channel.ReplyURL == "" {
		return errors.New("channel.reply_url is required when channel.mode is webhook")
	}
	if cfg.Conversation.Store == "redis" && cfg.Redis.URL == "" {
		return errors.New("redis.url is required when conversation.store is redis")
	}
	return nil
}
