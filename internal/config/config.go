package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	RemoteDSN       string        `env:"REMOTE_DSN"`
	CachePath       string        `env:"CACHE_PATH" envDefault:"data/fireguard.db"`
	RedisURL        string        `env:"REDIS_URL"`
	RedisPrefix     string        `env:"REDIS_PREFIX" envDefault:"fireguard"`
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTAccessTTL    time.Duration `env:"JWT_ACCESS_TTL" envDefault:"12h"`
	AllowOrigins    []string      `env:"ALLOW_ORIGINS" envSeparator:","`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT" envDefault:"4s"`
	StartupWatchdog time.Duration `env:"STARTUP_WATCHDOG" envDefault:"6s"`
	PasswordHashing bool          `env:"PASSWORD_HASHING" envDefault:"false"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	Analysis   AnalysisConfig   `envPrefix:"OPENAI_"`
	Storage    StorageConfig    `envPrefix:"STORAGE_"`
	Monitoring MonitoringConfig `envPrefix:"MONITOR_"`

	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// AnalysisConfig habilita a análise de fotos quando há chave.
type AnalysisConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gpt-4o-mini"`
}

// StorageConfig descreve o bucket S3/R2 de fotos e logotipos. Vazio mantém os arquivos inline.
type StorageConfig struct {
	Endpoint     string `env:"ENDPOINT"`
	Region       string `env:"REGION" envDefault:"auto"`
	Bucket       string `env:"BUCKET"`
	AccessKey    string `env:"ACCESS_KEY"`
	SecretKey    string `env:"SECRET_KEY"`
	PublicDomain string `env:"PUBLIC_DOMAIN"`
}

// Enabled informa se há bucket configurado.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != "" && strings.TrimSpace(s.Bucket) != ""
}

// MonitoringConfig controla o alerta periódico de validade.
type MonitoringConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Interval     time.Duration `env:"INTERVAL" envDefault:"1h"`
	AlertWindow  time.Duration `env:"ALERT_WINDOW" envDefault:"24h"`
	SlackWebhook string        `env:"SLACK_WEBHOOK"`
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente (e .env, se existir) e aplica defaults seguros.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore carrega só o necessário para ferramentas de linha de comando:
// espelho local e conexão remota, sem exigir JWT_SECRET.
func LoadStore() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ler ambiente: %w", err)
	}

	origins := cfg.AllowOrigins[:0]
	for _, origin := range cfg.AllowOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowOrigins = origins
	cfg.RemoteDSN = strings.TrimSpace(cfg.RemoteDSN)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 1, Burst: 5}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("PORT inválida")
	}
	if len(strings.TrimSpace(c.JWTSecret)) < 32 {
		return errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if c.JWTAccessTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL inválido")
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.StartupWatchdog <= 0 {
		return errors.New("STARTUP_WATCHDOG inválido")
	}
	if c.Monitoring.Enabled && c.Monitoring.Interval <= 0 {
		return errors.New("MONITOR_INTERVAL inválido")
	}
	return nil
}

func (c *Config) validateStore() error {
	if strings.TrimSpace(c.CachePath) == "" && strings.TrimSpace(c.RedisURL) == "" {
		return errors.New("CACHE_PATH ou REDIS_URL obrigatório")
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("PROBE_TIMEOUT inválido")
	}
	return nil
}
