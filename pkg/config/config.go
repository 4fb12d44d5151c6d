package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/conmuninw/gameruleTh-Bot/pkg/logger"
)

const DefaultPath = "./config.yaml"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Messenger MessengerConfig `yaml:"messenger"`
	PromptPay PromptPayConfig `yaml:"promptpay"`
	Admin     AdminConfig     `yaml:"admin"`
	Escrow    EscrowConfig    `yaml:"escrow"`
	Session   SessionConfig   `yaml:"session"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	JWT       JWTConfig       `yaml:"jwt"`
	Logger    logger.Config   `yaml:"logger"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" validate:"required,numeric"`
	Environment     string        `yaml:"environment"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	DispatchWorkers int           `yaml:"dispatch_workers" validate:"gte=1"`
	DispatchQueue   int           `yaml:"dispatch_queue" validate:"gte=1"`
	// Per-client limits on the admin API.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" validate:"gte=1"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" validate:"oneof=postgres memory"`
	Host            string        `yaml:"host" validate:"required_if=Driver postgres"`
	Port            string        `yaml:"port" validate:"required_if=Driver postgres"`
	User            string        `yaml:"user" validate:"required_if=Driver postgres"`
	DBName          string        `yaml:"name" validate:"required_if=Driver postgres"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Migrate         bool          `yaml:"migrate"`
}

type MessengerConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	APIVersion  string        `yaml:"api_version" validate:"required"`
	AccessToken string        `yaml:"access_token"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

type PromptPayConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	FallbackURL string `yaml:"fallback_url" validate:"required,url"`
	// Escrow account receiving buyer payments.
	PayeeID string `yaml:"payee_id" validate:"required"`
}

type AdminConfig struct {
	// The first id receives every admin notification.
	IDs []string `yaml:"ids" validate:"required,min=1,dive,required"`
}

type EscrowConfig struct {
	RetentionWindow   time.Duration `yaml:"retention_window"`
	RetentionInterval time.Duration `yaml:"retention_interval"`
	EscalationWindow  time.Duration `yaml:"escalation_window"`
	StoreTimeout      time.Duration `yaml:"store_timeout"`
	NotifyTimeout     time.Duration `yaml:"notify_timeout"`
	MaxWriteAttempts  int           `yaml:"max_write_attempts" validate:"gte=1"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	CheckOrigin     bool          `yaml:"check_origin"`
	PingPeriod      time.Duration `yaml:"ping_period"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" validate:"required,min=16"`
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

// Load reads an optional .env file, then the YAML file at path with
// ${VAR} references expanded from the environment, fills defaults and
// validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	configData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(configData)
}

// Parse decodes raw YAML into a validated Config.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// AdminNotifyID is the admin party that receives proofs, payout requests
// and case relays.
func (c *Config) AdminNotifyID() string {
	return c.Admin.NotifyID()
}

func (a AdminConfig) NotifyID() string {
	if len(a.IDs) == 0 {
		return ""
	}
	return a.IDs[0]
}

func (a AdminConfig) IsAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range a.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) applyDefaults() {
	setString(&c.Server.Host, "0.0.0.0")
	setString(&c.Server.Port, "3000")
	setDuration(&c.Server.ReadTimeout, 20*time.Second)
	setDuration(&c.Server.WriteTimeout, 20*time.Second)
	setInt(&c.Server.DispatchWorkers, 8)
	setInt(&c.Server.DispatchQueue, 256)
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 10
	}
	setInt(&c.Server.RateLimitBurst, 20)

	setString(&c.Database.Driver, "postgres")
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 10)
	setInt(&c.Database.MaxIdleConns, 5)
	setDuration(&c.Database.ConnMaxLifetime, 30*time.Minute)

	setString(&c.Messenger.BaseURL, "https://graph.facebook.com")
	setString(&c.Messenger.APIVersion, "v18.0")
	setDuration(&c.Messenger.Timeout, 10*time.Second)
	setDuration(&c.Messenger.RetryDelay, 500*time.Millisecond)

	setString(&c.PromptPay.BaseURL, "https://promptpay.io")
	setString(&c.PromptPay.FallbackURL, "https://quickchart.io/qr")

	setDuration(&c.Escrow.RetentionWindow, 24*time.Hour)
	setDuration(&c.Escrow.RetentionInterval, 10*time.Minute)
	setDuration(&c.Escrow.EscalationWindow, 5*time.Minute)
	setDuration(&c.Escrow.StoreTimeout, 5*time.Second)
	setDuration(&c.Escrow.NotifyTimeout, 10*time.Second)
	setInt(&c.Escrow.MaxWriteAttempts, 3)

	setDuration(&c.Session.TTL, time.Hour)
	setDuration(&c.Session.SweepInterval, 10*time.Minute)

	setInt(&c.WebSocket.ReadBufferSize, 1024)
	setInt(&c.WebSocket.WriteBufferSize, 1024)
	setDuration(&c.WebSocket.PingPeriod, 30*time.Second)

	setString(&c.JWT.Issuer, "gameruleth")
	setDuration(&c.JWT.TTL, 12*time.Hour)

	setString(&c.Logger.Level, "info")
	setString(&c.Logger.TimeFormat, time.RFC3339)
}

func setString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

func setDuration(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}
