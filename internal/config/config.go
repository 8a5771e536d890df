package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// postgresNameColumnMax is the width of guestbook.name in the schema.
const postgresNameColumnMax = 50

const (
	defaultPersonaPrompt   = "당신은 친철한 사람입니다. 말투는 사극말투로 단아하게 말해주세요."
	defaultPersonaGreeting = "네, 그리 하겠사옵니다. 무엇을 여쭈시려 하시는지요?"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"5000"`
	Env         string `env:"ENV" envDefault:"development"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"*"`

	// Guestbook storage
	StoreBackend  string        `env:"STORE_BACKEND"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	GuestbookFile string        `env:"GUESTBOOK_FILE" envDefault:"data/guestbook.json"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Guestbook limits, counted in characters
	NameMaxLen    int `env:"GUESTBOOK_NAME_MAX" envDefault:"50"`
	MessageMaxLen int `env:"GUESTBOOK_MESSAGE_MAX" envDefault:"1000"`

	// Realtime
	RealtimeEnabled bool   `env:"REALTIME_ENABLED" envDefault:"true"`
	RedisURL        string `env:"REDIS_URL"`

	// Chat
	ChatProvider    string        `env:"CHAT_PROVIDER" envDefault:"gemini"`
	PersonaPrompt   string        `env:"CHAT_PERSONA_PROMPT"`
	PersonaGreeting string        `env:"CHAT_PERSONA_GREETING"`
	ModelTimeout    time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`

	// Gemini AI
	GeminiAPIKey         string `env:"GEMINI_API_KEY"`
	GeminiModel          string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiConcurrentReqs int    `env:"GEMINI_CONCURRENT_REQUESTS" envDefault:"5"`

	// OpenAI-compatible
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PersonaPrompt == "" {
		cfg.PersonaPrompt = defaultPersonaPrompt
	}
	if cfg.PersonaGreeting == "" {
		cfg.PersonaGreeting = defaultPersonaGreeting
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreFile
		if cfg.DatabaseURL != "" {
			cfg.StoreBackend = StorePostgres
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks rules that span more than one variable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=%s requires DATABASE_URL", StorePostgres)
		}
	case StoreFile:
		if c.GuestbookFile == "" {
			return fmt.Errorf("STORE_BACKEND=%s requires GUESTBOOK_FILE", StoreFile)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.ChatProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown CHAT_PROVIDER %q", c.ChatProvider)
	}

	if c.NameMaxLen <= 0 || c.MessageMaxLen <= 0 {
		return fmt.Errorf("guestbook length limits must be positive (name=%d, message=%d)", c.NameMaxLen, c.MessageMaxLen)
	}
	if c.StoreBackend == StorePostgres && c.NameMaxLen > postgresNameColumnMax {
		return fmt.Errorf("GUESTBOOK_NAME_MAX=%d exceeds the %d-character name column", c.NameMaxLen, postgresNameColumnMax)
	}
	if c.StoreTimeout <= 0 || c.ModelTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.GeminiConcurrentReqs <= 0 {
		c.GeminiConcurrentReqs = 1
	}
	return nil
}

// ChatAPIKey returns the credential for the selected chat provider.
func (c *Config) ChatAPIKey() string {
	if c.ChatProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}
