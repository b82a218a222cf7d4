package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	// MinAppSecretLen is the HMAC key size of HS256.
	MinAppSecretLen = 32
)

type Config struct {
	Debug     bool           `yaml:"debug" env:"DEBUG"`
	AppSecret string         `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	Limiter   Limiter        `yaml:"limiter"`
	Auth      Auth           `yaml:"auth"`
	Server    Server         `yaml:"server"`
	Storage   Storage        `yaml:"storage"`
	DB        DB             `yaml:"db"`
	Cache     Cache          `yaml:"cache"`
	SMTP      SMTPServer     `yaml:"smtp"`
	Tasks     BackgroundPool `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env:"LIMITER_RPS" env-default:"20"`
	Burst   int     `yaml:"burst" env:"LIMITER_BURST" env-default:"5"`
}

type Auth struct {
	TokenTTL   time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"3000"`
	Host string `yaml:"host" env:"HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"5s"`
}

type Cache struct {
	Enabled  bool          `yaml:"enabled" env:"CACHE_ENABLED"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"1m"`
}

type SMTPServer struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env:"SMTP_SENDER"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
}

type BackgroundPool struct {
	MaxWorkers   int `yaml:"max_workers" env-default:"3"`
	MaxQueueSize int `yaml:"max_queue_size" env-default:"100"`
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPServer) Enabled() bool {
	return s.Host != "" && s.Sender != ""
}

// Load reads configPath when it exists and environment variables otherwise.
// Variables from a .env file in the working directory are loaded first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	// env-required only checks that APP_SECRET is set, an empty value passes
	if len(c.AppSecret) < MinAppSecretLen {
		return fmt.Errorf("config: app_secret (APP_SECRET) must be at least %d bytes", MinAppSecretLen)
	}
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.DB.Dsn == "" {
			return errors.New("config: db.dsn (DATABASE_URL) is required for the postgres driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	return nil
}
