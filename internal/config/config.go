package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultConfigPath        = "config/config.yaml"
	defaultAddress           = ":4001"
	defaultCurrency          = "SAR"
	defaultCommissionPercent = 20
	defaultPayoutMinimum     = 5000
	defaultAccessTTL         = 2 * time.Hour
	defaultRefreshTTL        = 30 * 24 * time.Hour
	defaultAutoCompleteDays  = 3
)

type Config struct {
	Server struct {
		Address        string        `yaml:"address"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		IdleTimeout    time.Duration `yaml:"idle_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		AppURL         string        `yaml:"app_url"`
		UploadsURL     string        `yaml:"uploads_url"`
	} `yaml:"server"`
	Database struct {
		URL          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	JWT struct {
		Secret     string        `yaml:"secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`
	Payments struct {
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		WebhookSecret     string `yaml:"webhook_secret"`
		Currency          string `yaml:"currency"`
		CommissionPercent int    `yaml:"commission_percent"`
		PayoutMinimum     int64  `yaml:"payout_minimum_cents"`
	} `yaml:"payments"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
	} `yaml:"smtp"`
	Storage struct {
		Driver    string `yaml:"driver"`
		LocalDir  string `yaml:"local_dir"`
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"storage"`
	FCM struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"fcm"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Jobs struct {
		AutoCompleteDays int    `yaml:"auto_complete_days"`
		PayoutSchedule   string `yaml:"payout_schedule"`
	} `yaml:"jobs"`
}

// LoadConfig reads the YAML file at CONFIG_PATH, applies environment overrides and defaults.
func LoadConfig() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	case os.IsNotExist(err) && os.Getenv("CONFIG_PATH") == "":
		// environment-only deployment
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Payments.CommissionPercent < 0 || c.Payments.CommissionPercent > 100 {
		return fmt.Errorf("commission_percent must be between 0 and 100")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 5 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = time.Minute
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = defaultAccessTTL
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Payments.Currency == "" {
		cfg.Payments.Currency = defaultCurrency
	}
	if cfg.Payments.CommissionPercent == 0 {
		cfg.Payments.CommissionPercent = defaultCommissionPercent
	}
	if cfg.Payments.PayoutMinimum == 0 {
		cfg.Payments.PayoutMinimum = defaultPayoutMinimum
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}
	if cfg.Server.UploadsURL == "" {
		cfg.Server.UploadsURL = "/uploads"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "marketplace.orders"
	}
	if cfg.Jobs.AutoCompleteDays == 0 {
		cfg.Jobs.AutoCompleteDays = defaultAutoCompleteDays
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Address, "SERVER_ADDRESS")
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	setString(&cfg.Server.AppURL, "APP_URL")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Payments.BaseURL, "PAYMENTS_BASE_URL")
	setString(&cfg.Payments.APIKey, "PAYMENTS_API_KEY")
	setString(&cfg.Payments.WebhookSecret, "PAYMENTS_WEBHOOK_SECRET")
	setString(&cfg.Payments.Currency, "PAYMENTS_CURRENCY")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.FCM.CredentialsFile, "FCM_CREDENTIALS_FILE")
	setString(&cfg.Jobs.PayoutSchedule, "PAYOUT_SCHEDULE")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}

	if v, err := readIntEnv("REDIS_DB"); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	} else if v != nil {
		cfg.Redis.DB = *v
	}
	if v, err := readIntEnv("SMTP_PORT"); err != nil {
		return fmt.Errorf("parse SMTP_PORT: %w", err)
	} else if v != nil {
		cfg.SMTP.Port = *v
	}
	if v, err := readIntEnv("COMMISSION_PERCENT"); err != nil {
		return fmt.Errorf("parse COMMISSION_PERCENT: %w", err)
	} else if v != nil {
		cfg.Payments.CommissionPercent = *v
	}
	if v, err := readIntEnv("PAYOUT_MINIMUM_CENTS"); err != nil {
		return fmt.Errorf("parse PAYOUT_MINIMUM_CENTS: %w", err)
	} else if v != nil {
		cfg.Payments.PayoutMinimum = int64(*v)
	}
	if v, err := readIntEnv("AUTO_COMPLETE_DAYS"); err != nil {
		return fmt.Errorf("parse AUTO_COMPLETE_DAYS: %w", err)
	} else if v != nil {
		cfg.Jobs.AutoCompleteDays = *v
	}
	return nil
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
