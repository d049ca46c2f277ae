package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env          string             `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   HTTPServerConfig   `yaml:"http_server"`
	MongoDB      MongoDBConfig      `yaml:"mongo"`
	Redis        RedisConfig        `yaml:"redis"`
	NATS         NATSConfig         `yaml:"nats"`
	Logger       LoggerConfig       `yaml:"logger"`
	JWT          JWTConfig          `yaml:"jwt"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Payment      PaymentConfig      `yaml:"payment"`
	Storage      StorageConfig      `yaml:"storage"`
	Frontend     FrontendConfig     `yaml:"frontend"`
	Cart         CartConfig         `yaml:"cart"`
	ProductCache ProductCacheConfig `yaml:"product_cache"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"shree_ecommerce"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"168h"`
}

type SMTPConfig struct {
	Host        string `yaml:"host" env:"SMTP_HOST" env-required:"true"`
	Port        int    `yaml:"port" env:"SMTP_PORT" env-required:"true"`
	Username    string `yaml:"username" env:"SMTP_USERNAME"`
	Password    string `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail string `yaml:"sender_email" env:"SMTP_SENDER_EMAIL" env-required:"true"`
	Encryption  string `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName  string `yaml:"server_name" env:"SMTP_SERVER_NAME"`
}

type PaymentConfig struct {
	KeyID     string        `yaml:"key_id" env:"RAZORPAY_KEY_ID" env-required:"true"`
	KeySecret string        `yaml:"key_secret" env:"RAZORPAY_KEY_SECRET" env-required:"true"`
	BaseURL   string        `yaml:"base_url" env:"RAZORPAY_BASE_URL" env-default:"https://api.razorpay.com"`
	Currency  string        `yaml:"currency" env:"PAYMENT_CURRENCY" env-default:"INR"`
	Timeout   time.Duration `yaml:"timeout" env:"PAYMENT_TIMEOUT" env-default:"15s"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY" env-required:"true"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY" env-required:"true"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"shree-ecommerce"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"true"`
}

type FrontendConfig struct {
	BaseURL string `yaml:"base_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
}

type CartConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CART_TTL" env-default:"720h"`
}

type ProductCacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"PRODUCT_CACHE_TTL" env-default:"5m"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
