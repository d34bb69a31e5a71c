package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" env-default:"local"`
	Port string `env:"PORT" env-default:"5000"`

	Mongo   Mongo
	Token   Token
	Payment Payment
	Redis   Redis
	Kafka   Kafka
	HTTP    HTTP
	RateLim RateLimit
	Settle  Settle
}

type Mongo struct {
	URI             string        `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database        string        `env:"DB_NAME" env-default:"smart-class-hub"`
	Transactions    bool          `env:"MONGO_TRANSACTIONS" env-default:"false"`
	ConnectAttempts uint          `env:"MONGO_CONNECT_ATTEMPTS" env-default:"3"`
	ConnectDelay    time.Duration `env:"MONGO_CONNECT_DELAY" env-default:"1s"`
}

type Token struct {
	Secret string        `env:"ACCESS_SECRET" env-required:"true"`
	TTL    time.Duration `env:"TOKEN_TTL" env-default:"24h"`
}

type Payment struct {
	Key      string `env:"PAYMENT_KEY"`
	Currency string `env:"PAYMENT_CURRENCY" env-default:"inr"`
	// Falls back to ACCESS_SECRET when empty.
	ReceiptSecret string `env:"RECEIPT_SECRET"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	Channel  string `env:"EVENTS_CHANNEL" env-default:"smartclass-events"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"smartclass-events"`
}

type HTTP struct {
	CORSOrigins     []string      `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type RateLimit struct {
	Rate  float64 `env:"RATE_LIMIT" env-default:"5"`
	Burst int     `env:"RATE_BURST" env-default:"10"`
}

type Settle struct {
	LockTTL time.Duration `env:"SETTLE_LOCK_TTL" env-default:"30s"`
}

// Addr returns the listen address in ":port" form.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// MustLoad reads .env when present, then decodes the environment into Config.
func MustLoad() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not read .env: %v", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}
