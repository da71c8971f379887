package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type HTTPServer struct {
	Addr            string        `yaml:"address"          env:"HTTP_ADDRESS"          env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST"            env:"PG_HOST"            env-default:"localhost"`
	Port            string        `yaml:"PG_PORT"            env:"PG_PORT"            env-default:"5432"`
	User            string        `yaml:"PG_USER"            env:"PG_USER"            env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD"        env:"PG_PASSWORD"        env-required:"true"`
	Name            string        `yaml:"PG_DBNAME"          env:"PG_DBNAME"          env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE"         env:"PG_SSLMODE"         env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS"     env:"PG_MAX_OPEN_CONNS"     env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS"     env:"PG_MAX_IDLE_CONNS"     env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME"  env:"PG_CONN_MAX_LIFETIME"  env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST"     env:"REDIS_HOST"     env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT"     env:"REDIS_PORT"     env-default:"6379"`
	Username string `yaml:"REDIS_USER"     env:"REDIS_USER"     env-required:"true"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD" env-required:"true"`
	DB       int    `yaml:"REDIS_DB"       env:"REDIS_DB"       env-default:"0"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE"  env:"WINDOW_SIZE"  env-default:"15s"`
}

type Security struct {
	JWTKey         string `yaml:"JWT_KEY"          env:"JWT_KEY"          env-required:"true"`
	JWTExpiryHours int    `yaml:"JWT_EXPIRY_HOURS" env:"JWT_EXPIRY_HOURS" env-default:"24"`
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY"    env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"receipts@pos.local"`
	FromName  string `yaml:"FROM_NAME"  env:"SENDGRID_FROM_NAME"  env-default:"POS Receipts"`
}

// Kafka publishing is disabled when no brokers are configured.
type Kafka struct {
	Brokers      []string      `yaml:"BROKERS"       env:"KAFKA_BROKERS"       env-separator:","`
	Topic        string        `yaml:"TOPIC"         env:"KAFKA_TOPIC"         env-default:"pos.invoices"`
	WriteTimeout time.Duration `yaml:"WRITE_TIMEOUT" env:"KAFKA_WRITE_TIMEOUT" env-default:"5s"`
}

// Tracing is disabled when ExporterEndpoint is empty.
type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME"      env:"OTEL_SERVICE_NAME"      env-default:"pos-admin-platform"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO"     env:"OTEL_SAMPLER_RATIO"     env-default:"1.0"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

type Checkout struct {
	TaxRate           string        `yaml:"TAX_RATE"           env:"CHECKOUT_TAX_RATE"           env-default:"0.10"`
	Currency          string        `yaml:"CURRENCY"           env:"CHECKOUT_CURRENCY"           env-default:"USD"`
	CompletionDisplay time.Duration `yaml:"COMPLETION_DISPLAY" env:"CHECKOUT_COMPLETION_DISPLAY" env-default:"2s"`
}

func (c Checkout) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax rate[%s] is not valid: %w", c.TaxRate, err)
	}

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("tax rate[%s] must be between 0 and 1", c.TaxRate)
	}

	return rate, nil
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Security     Security     `yaml:"security"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	Kafka        Kafka        `yaml:"kafka"`
	Otel         Otel         `yaml:"otel"`
	Cache        CacheConfig  `yaml:"cache"`
	Checkout     Checkout     `yaml:"checkout"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg
}

func LoadConfigFromPath(configPath string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	if _, err := cfg.Checkout.Rate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) Addr() string {
	return r.Host + ":" + r.Port
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s", r.Username, r.Password, r.Addr())
}
