package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	Workers   int           `env:"WORKERS,   default=8"`

	// TrackRateLimit is requests per second per client IP on the public
	// tracking endpoints.
	TrackRateLimit float64 `env:"TRACK_RATE_LIMIT, default=20"`

	Mongo MongoConfig
	Redis RedisConfig
	AMQP  AMQPConfig
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,        default=shipment_tracker"`
	MaxPoolSize uint64 `env:"MONGO_POOL_SIZE, default=50"`
}

type RedisConfig struct {
	Addr          string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password      string `env:"REDIS_PASSWORD"`
	DB            int    `env:"REDIS_DB,        default=0"`
	PoolSize      int    `env:"REDIS_POOL_SIZE, default=20"`
	NotifyChannel string `env:"NOTIFY_CHANNEL,  default=notifications"`
}

// AMQPConfig enables the RabbitMQ ingress when URL is set.
type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=shipment.events"`
	Queue    string `env:"AMQP_QUEUE,    default=tracker.status-events"`
}

// IsDevelopment switches on pretty console logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper, which tests replace with a map.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Client is the configuration of the terminal tracking client.
type Client struct {
	APIURL     string        `env:"API_URL,      default=http://localhost:8080"`
	PushURL    string        `env:"PUSH_URL"`
	MapsAPIKey string        `env:"MAPS_API_KEY"`
	Token      string        `env:"TOKEN"`
	Timeout    time.Duration `env:"HTTP_TIMEOUT, default=10s"`
	LogLevel   string        `env:"LOG_LEVEL,    default=warn"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient(ctx context.Context) (*Client, error) {
	return LoadClientWith(ctx, envconfig.OsLookuper())
}

func LoadClientWith(ctx context.Context, lookuper envconfig.Lookuper) (*Client, error) {
	var cfg Client
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
