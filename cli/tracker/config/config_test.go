package config

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	file, err := ioutil.TempFile("", "tracker_config_*.yaml")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(func() { os.Remove(file.Name()) })

	return file.Name()
}

func TestConfigLoad(t *testing.T) {
	// To prevent log output during tests
	log.SetOutput(ioutil.Discard)

	cfg := `api_port: 8090
log_level: "DEBUG"
log_file_path: "logs/tracker.log"
log_max_age_days: 14

storage:
  postgresql:
    host: "localhost"
    port: "5432"
    user: "hmdm"
    password: "hmdm"
    database: "hmdm"
    sslmode: "disable"
  redis:
    host: "localhost"
    port: "6379"

history_days: 3
snapshot_spacing_seconds: 60
snapshot_all_cron_expression: "@every 5m"
snapshot_all_workers: 8
locations_cache_ttl_seconds: 15
cors_allowed_origins:
  - "http://localhost:3000"
rate_limit_rps: 20
`

	conf, err := New(writeConfig(t, cfg))
	if assert.NoError(t, err) {
		assert.Equal(t, Settings{
			ApiPort:       8090,
			LogLevel:      "DEBUG",
			LogFilePath:   "logs/tracker.log",
			LogMaxAgeDays: 14,
			Store: map[string]map[string]string{
				"postgresql": {
					"host":     "localhost",
					"port":     "5432",
					"user":     "hmdm",
					"password": "hmdm",
					"database": "hmdm",
					"sslmode":  "disable",
				},
				"redis": {
					"host": "localhost",
					"port": "6379",
				},
			},
			MigrationsPath:             "file://migrations",
			HistoryDays:                3,
			MaxHistoryDays:             365,
			SnapshotSpacingSeconds:     60,
			DevicesRecentDays:          30,
			StoreTimeoutSeconds:        10,
			SnapshotAllCronExpression:  "@every 5m",
			SnapshotAllWorkers:         8,
			LocationsCacheTTLSeconds:   15,
			BreakerConsecutiveFailures: 5,
			BreakerOpenSeconds:         30,
			CorsAllowedOrigins:         []string{"http://localhost:3000"},
			RateLimitRPS:               20,
			RateLimitBurst:             21,
		}, conf)

		assert.Equal(t, log.DebugLevel, conf.GetLogLevel())
		assert.Equal(t, time.Minute, conf.GetSnapshotSpacing())
		assert.Equal(t, 15*time.Second, conf.GetLocationsCacheTTL())
		assert.Equal(t, "hmdm", conf.GetPostgresSettings()["database"])
		assert.NotNil(t, conf.GetRedisSettings())
	}
}

func TestHistoryDaysRange(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	tests := []struct {
		name            string
		yamlContent     string
		expectedDays    int
		expectedMaxDays int
	}{
		{
			name: "Fields provided in YAML",
			yamlContent: `
history_days: 14
max_history_days: 90
`,
			expectedDays:    14,
			expectedMaxDays: 90,
		},
		{
			name:            "Fields not provided (defaults)",
			yamlContent:     "# empty config\n",
			expectedDays:    7,
			expectedMaxDays: 365,
		},
		{
			name: "Negative days",
			yamlContent: `
history_days: -1
`,
			expectedDays:    7,
			expectedMaxDays: 365,
		},
		{
			name: "Default window longer than maximum",
			yamlContent: `
history_days: 30
max_history_days: 10
`,
			expectedDays:    7,
			expectedMaxDays: 365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(writeConfig(t, tt.yamlContent))
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.expectedDays, cfg.HistoryDays)
			assert.Equal(t, tt.expectedMaxDays, cfg.MaxHistoryDays)
		})
	}
}

func TestDefaults(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	cfg, err := New(writeConfig(t, "log_level: \"TRACE\"\nlocations_cache_ttl_seconds: -5\nrate_limit_rps: -1\n"))
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, log.InfoLevel, cfg.GetLogLevel())
	assert.Equal(t, int32(8080), cfg.ApiPort)
	assert.Equal(t, 2*time.Minute, cfg.GetSnapshotSpacing())
	assert.Equal(t, 10*time.Second, cfg.GetStoreTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetBreakerOpenTimeout())
	assert.Equal(t, 10, cfg.LocationsCacheTTLSeconds)
	assert.Equal(t, float64(0), cfg.RateLimitRPS)
	assert.Equal(t, 0, cfg.RateLimitBurst)
	assert.Equal(t, 4, cfg.SnapshotAllWorkers)
	assert.Nil(t, cfg.GetRedisSettings())
}

func TestNonExistentConfig(t *testing.T) {
	cfg, err := New("/tmp/non_existent_tracker_config.yaml")
	assert.Error(t, err)
	assert.Equal(t, 0, cfg.HistoryDays)
}
