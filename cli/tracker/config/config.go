package config

/*
Описание конфигурационного файла
*/

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

const (
	defaultHistoryDays          = 7
	defaultMaxHistoryDays       = 365
	defaultSnapshotSpacingSec   = 120
	defaultSnapshotAllWorkers   = 4
	defaultDevicesRecentDays    = 30
	defaultStoreTimeoutSec      = 10
	defaultBreakerFailures      = 5
	defaultBreakerOpenSec       = 30
	defaultMigrationsPath       = "file://migrations"
	defaultLocationsCacheTTLSec = 10
)

type Settings struct {
	ApiPort        int32                        `yaml:"api_port"`
	LogLevel       string                       `yaml:"log_level"`
	LogFilePath    string                       `yaml:"log_file_path"`
	LogMaxAgeDays  int                          `yaml:"log_max_age_days"`
	Store          map[string]map[string]string `yaml:"storage"`
	MigrationsPath string                       `yaml:"migrations_path"`

	HistoryDays            int `yaml:"history_days"`
	MaxHistoryDays         int `yaml:"max_history_days"`
	SnapshotSpacingSeconds int `yaml:"snapshot_spacing_seconds"`
	DevicesRecentDays      int `yaml:"devices_recent_days"`
	StoreTimeoutSeconds    int `yaml:"store_timeout_seconds"`

	SnapshotAllCronExpression string `yaml:"snapshot_all_cron_expression"`
	SnapshotAllWorkers        int    `yaml:"snapshot_all_workers"`

	LocationsCacheTTLSeconds int `yaml:"locations_cache_ttl_seconds"`

	BreakerConsecutiveFailures int `yaml:"breaker_consecutive_failures"`
	BreakerOpenSeconds         int `yaml:"breaker_open_seconds"`

	CorsAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	c.applyDefaults()

	return c, nil
}

func (c *Settings) applyDefaults() {
	if c.ApiPort == 0 {
		c.ApiPort = 8080
	}
	if c.MigrationsPath == "" {
		c.MigrationsPath = defaultMigrationsPath
	}

	if c.HistoryDays == 0 {
		c.HistoryDays = defaultHistoryDays
	}
	if c.MaxHistoryDays == 0 {
		c.MaxHistoryDays = defaultMaxHistoryDays
	}
	if c.HistoryDays < 1 || c.MaxHistoryDays < 1 || c.HistoryDays > c.MaxHistoryDays {
		log.Errorf("Некорректные history_days (%d) или max_history_days (%d). Используются значения по умолчанию %d и %d.", c.HistoryDays, c.MaxHistoryDays, defaultHistoryDays, defaultMaxHistoryDays)
		c.HistoryDays = defaultHistoryDays
		c.MaxHistoryDays = defaultMaxHistoryDays
	}

	if c.SnapshotSpacingSeconds <= 0 {
		c.SnapshotSpacingSeconds = defaultSnapshotSpacingSec
	}
	if c.DevicesRecentDays <= 0 {
		c.DevicesRecentDays = defaultDevicesRecentDays
	}
	if c.StoreTimeoutSeconds <= 0 {
		c.StoreTimeoutSeconds = defaultStoreTimeoutSec
	}
	if c.SnapshotAllWorkers <= 0 {
		c.SnapshotAllWorkers = defaultSnapshotAllWorkers
	}
	if c.LocationsCacheTTLSeconds < 0 {
		log.Errorf("Некорректный locations_cache_ttl_seconds (%d). Используется %d.", c.LocationsCacheTTLSeconds, defaultLocationsCacheTTLSec)
		c.LocationsCacheTTLSeconds = defaultLocationsCacheTTLSec
	}
	if c.BreakerConsecutiveFailures <= 0 {
		c.BreakerConsecutiveFailures = defaultBreakerFailures
	}
	if c.BreakerOpenSeconds <= 0 {
		c.BreakerOpenSeconds = defaultBreakerOpenSec
	}
	if c.RateLimitRPS < 0 {
		log.Errorf("Некорректный rate_limit_rps (%v). Ограничение запросов отключено.", c.RateLimitRPS)
		c.RateLimitRPS = 0
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		c.RateLimitBurst = int(c.RateLimitRPS) + 1
	}
}

func (s *Settings) GetSnapshotSpacing() time.Duration {
	return time.Duration(s.SnapshotSpacingSeconds) * time.Second
}

func (s *Settings) GetStoreTimeout() time.Duration {
	return time.Duration(s.StoreTimeoutSeconds) * time.Second
}

func (s *Settings) GetLocationsCacheTTL() time.Duration {
	return time.Duration(s.LocationsCacheTTLSeconds) * time.Second
}

func (s *Settings) GetBreakerOpenTimeout() time.Duration {
	return time.Duration(s.BreakerOpenSeconds) * time.Second
}

func (s *Settings) GetPostgresSettings() map[string]string {
	return s.Store["postgresql"]
}

// GetRedisSettings возвращает nil, если кэш не настроен.
func (s *Settings) GetRedisSettings() map[string]string {
	return s.Store["redis"]
}
