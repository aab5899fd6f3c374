package conf

import (
	"path/filepath"
	"time"
)

type Database struct {
	Type        string `json:"type" env:"TYPE"`
	Host        string `json:"host" env:"HOST"`
	Port        int    `json:"port" env:"PORT"`
	User        string `json:"user" env:"USER"`
	Password    string `json:"password" env:"PASS"`
	Name        string `json:"name" env:"NAME"`
	DBFile      string `json:"db_file" env:"FILE"`
	TablePrefix string `json:"table_prefix" env:"TABLE_PREFIX"`
	SSLMode     string `json:"ssl_mode" env:"SSL_MODE"`
	DSN         string `json:"dsn" env:"DSN"`
}

type Scheme struct {
	Address  string `json:"address" env:"ADDR"`
	HttpPort int    `json:"http_port" env:"HTTP_PORT"`
	SiteURL  string `json:"site_url" env:"SITE_URL"`
}

type LogConfig struct {
	Enable     bool   `json:"enable" env:"ENABLE"`
	Level      string `json:"level" env:"LEVEL"`
	Name       string `json:"name" env:"NAME"`
	MaxSize    int    `json:"max_size" env:"MAX_SIZE"`
	MaxBackups int    `json:"max_backups" env:"MAX_BACKUPS"`
	MaxAge     int    `json:"max_age" env:"MAX_AGE"`
	Compress   bool   `json:"compress" env:"COMPRESS"`
}

// Share configures the platform's cut of every task.
type Share struct {
	PlatformEmail      string `json:"platform_email" env:"PLATFORM_EMAIL"`
	PlatformPercentage int    `json:"platform_percentage" env:"PLATFORM_PERCENTAGE"`
}

// Script configures the external revenue-split lookup.
type Script struct {
	Enabled  bool     `json:"enabled" env:"ENABLED"`
	Endpoint string   `json:"endpoint" env:"ENDPOINT"`
	Timeout  Duration `json:"timeout" env:"TIMEOUT"`
	CacheTTL Duration `json:"cache_ttl" env:"CACHE_TTL"`
}

type Mail struct {
	Transport     string   `json:"transport" env:"TRANSPORT"`
	Host          string   `json:"host" env:"HOST"`
	Port          int      `json:"port" env:"PORT"`
	Username      string   `json:"username" env:"USERNAME"`
	Password      string   `json:"password" env:"PASSWORD"`
	From          string   `json:"from" env:"FROM"`
	SubjectPrefix string   `json:"subject_prefix" env:"SUBJECT_PREFIX"`
	Timeout       Duration `json:"timeout" env:"TIMEOUT"`
	RatePerSecond float64  `json:"rate_per_second" env:"RATE_PER_SECOND"`
	Burst         int      `json:"burst" env:"BURST"`
}

type Reminder struct {
	Interval    Duration `json:"interval" env:"INTERVAL"`
	Attempts    uint     `json:"attempts" env:"ATTEMPTS"`
	Delay       Duration `json:"delay" env:"DELAY"`
	Types       []string `json:"types" env:"TYPES" envSeparator:","`
	TaskURLBase string   `json:"task_url_base" env:"TASK_URL_BASE"`
}

type JobConfig struct {
	Workers        int  `json:"workers" env:"WORKERS"`
	MaxRetry       int  `json:"max_retry" env:"MAX_RETRY"`
	TaskPersistant bool `json:"task_persistant" env:"TASK_PERSISTANT"`
}

type JobsConfig struct {
	Notify JobConfig `json:"notify" envPrefix:"NOTIFY_"`
}

type Cors struct {
	AllowOrigins []string `json:"allow_origins" env:"ALLOW_ORIGINS" envSeparator:","`
	AllowMethods []string `json:"allow_methods" env:"ALLOW_METHODS" envSeparator:","`
	AllowHeaders []string `json:"allow_headers" env:"ALLOW_HEADERS" envSeparator:","`
}

type Config struct {
	Force          bool       `json:"force" env:"FORCE"`
	SiteURL        string     `json:"site_url" env:"SITE_URL"`
	JwtSecret      string     `json:"jwt_secret" env:"JWT_SECRET"`
	TokenExpiresIn int        `json:"token_expires_in" env:"TOKEN_EXPIRES_IN"`
	Database       Database   `json:"database" envPrefix:"DB_"`
	Scheme         Scheme     `json:"scheme"`
	Log            LogConfig  `json:"log" envPrefix:"LOG_"`
	Share          Share      `json:"share" envPrefix:"SHARE_"`
	Script         Script     `json:"script" envPrefix:"SCRIPT_"`
	Mail           Mail       `json:"mail" envPrefix:"MAIL_"`
	Reminder       Reminder   `json:"reminder" envPrefix:"REMINDER_"`
	Jobs           JobsConfig `json:"jobs" envPrefix:"JOBS_"`
	Cors           Cors       `json:"cors" envPrefix:"CORS_"`
}

func DefaultConfig(dataDir string) *Config {
	logPath := filepath.Join(dataDir, "log/log.log")
	dbPath := filepath.Join(dataDir, "data.db")
	return &Config{
		Scheme: Scheme{
			Address:  "0.0.0.0",
			HttpPort: 8000,
		},
		JwtSecret:      "",
		TokenExpiresIn: 48,
		Database: Database{
			Type:        "sqlite3",
			Port:        0,
			TablePrefix: "x_",
			DBFile:      dbPath,
		},
		Log: LogConfig{
			Enable:     true,
			Level:      "info",
			Name:       logPath,
			MaxSize:    50,
			MaxBackups: 30,
			MaxAge:     28,
		},
		Share: Share{
			PlatformEmail:      "admin@tunga.io",
			PlatformPercentage: 10,
		},
		Script: Script{
			Enabled:  true,
			Endpoint: "https://api.mobbr.com/api_v1/uris/info",
			Timeout:  Duration(5 * time.Second),
			CacheTTL: Duration(10 * time.Minute),
		},
		Mail: Mail{
			Transport:     "log",
			Port:          587,
			From:          "Tunga <no-reply@tunga.io>",
			SubjectPrefix: "[Tunga]",
			Timeout:       Duration(10 * time.Second),
			RatePerSecond: 5,
			Burst:         5,
		},
		Reminder: Reminder{
			Interval:    Duration(time.Hour),
			Attempts:    3,
			Delay:       Duration(time.Second),
			Types:       []string{"interval", "start"},
			TaskURLBase: "http://tunga.io",
		},
		Jobs: JobsConfig{
			Notify: JobConfig{
				Workers:        3,
				MaxRetry:       2,
				TaskPersistant: true,
			},
		},
		Cors: Cors{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"*"},
			AllowHeaders: []string{"*"},
		},
	}
}
