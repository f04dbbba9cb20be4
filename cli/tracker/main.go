package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/daniil11ru/mdmtrack/cli/tracker/api"
	"github.com/daniil11ru/mdmtrack/cli/tracker/config"
	"github.com/daniil11ru/mdmtrack/cli/tracker/connector"
	"github.com/daniil11ru/mdmtrack/cli/tracker/connector/implementation"
	"github.com/daniil11ru/mdmtrack/cli/tracker/domain"
	"github.com/daniil11ru/mdmtrack/cli/tracker/repository"
	"github.com/daniil11ru/mdmtrack/cli/tracker/repository/cache"
	"github.com/daniil11ru/mdmtrack/cli/tracker/source"
	"github.com/daniil11ru/mdmtrack/cli/tracker/util"
	"github.com/robfig/cron/v3"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "")
	flag.Parse()
	settings, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
		return
	}

	configureLogging(settings)

	var storeConnector connector.Connector = &implementation.Connector{}
	if err := storeConnector.Connect(settings.GetPostgresSettings()); err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
		return
	}
	defer storeConnector.Close()

	if err := applyMigrations(settings.MigrationsPath, storeConnector.MigrationURL()); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
		return
	}

	defaultSource, err := source.NewDefaultPrimary(storeConnector.GetConnection())
	if err != nil {
		log.Fatalf("Не удалось инициализировать источник данных: %v", err)
		return
	}
	primarySource := source.NewGuardedPrimary(defaultSource, source.BreakerSettings{
		ConsecutiveFailures: uint32(settings.BreakerConsecutiveFailures),
		OpenTimeout:         settings.GetBreakerOpenTimeout(),
	})
	primaryRepository := &repository.Primary{Source: primarySource}

	saveSnapshot := &domain.SaveSnapshot{
		Repository: primaryRepository,
		Spacing:    settings.GetSnapshotSpacing(),
	}
	snapshotAll := &domain.SnapshotAll{
		Repository:   primaryRepository,
		SaveSnapshot: saveSnapshot,
		Workers:      settings.SnapshotAllWorkers,
		StoreTimeout: settings.GetStoreTimeout(),
	}

	if settings.SnapshotAllCronExpression != "" {
		scheduler, err := scheduleSnapshots(settings.SnapshotAllCronExpression, snapshotAll)
		if err != nil {
			log.Fatalf("Не удалось запланировать сохранение местоположений: %v", err)
			return
		}
		defer scheduler.Stop()
	}

	handler := &api.Handler{
		History: &domain.GetHistory{
			Repository:   primaryRepository,
			SaveSnapshot: saveSnapshot,
			DefaultDays:  settings.HistoryDays,
			MaxDays:      settings.MaxHistoryDays,
		},
		Locations: &domain.GetLocations{
			Repository: primaryRepository,
			Cache:      connectCache(settings),
			CacheTTL:   settings.GetLocationsCacheTTL(),
		},
		Devices: &domain.GetDevices{
			Repository: primaryRepository,
			RecentDays: settings.DevicesRecentDays,
		},
		SnapshotAll:    snapshotAll,
		Health:         &domain.CheckHealth{Repository: primaryRepository},
		RequestTimeout: settings.GetStoreTimeout(),
	}

	go runApi(handler, settings)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Получен сигнал завершения, остановка сервиса")
}

func getConfig(configFilePath string) (config.Settings, error) {
	var c config.Settings
	var err error

	if configFilePath == "" {
		return c, &util.ErrorString{S: "не задан путь до конфига"}
	}

	c, err = config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %v", err)
	}

	return c, nil
}

func configureLogging(settings config.Settings) {
	log.SetLevel(settings.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if settings.LogFilePath != "" {
		logDir := filepath.Dir(settings.LogFilePath)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				log.Fatalf("Не получилось создать директорию для логов: %v", err)
			}
		}

		log.AddHook(newFileHook(settings))
	}
}

func newFileHook(settings config.Settings) *lfshook.LfsHook {
	lumberjackLogger := &lumberjack.Logger{
		Filename:   settings.LogFilePath,
		MaxSize:    100,
		MaxBackups: 366,
		MaxAge:     settings.LogMaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	return lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: lumberjackLogger,
		log.FatalLevel: lumberjackLogger,
		log.ErrorLevel: lumberjackLogger,
		log.WarnLevel:  lumberjackLogger,
		log.InfoLevel:  lumberjackLogger,
		log.DebugLevel: lumberjackLogger,
		log.TraceLevel: lumberjackLogger,
	}, fileFmt)
}

func connectCache(settings config.Settings) domain.LocationsCache {
	redisSettings := settings.GetRedisSettings()
	if redisSettings == nil || settings.LocationsCacheTTLSeconds == 0 {
		log.Info("Кэш текущих местоположений отключён")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.GetStoreTimeout())
	defer cancel()

	client, err := cache.Connect(ctx, redisSettings)
	if err != nil {
		log.WithField("err", err).Warn("Кэш текущих местоположений недоступен, работа без кэша")
		return nil
	}

	return cache.NewRedisRepository(client)
}

func scheduleSnapshots(expression string, snapshotAll *domain.SnapshotAll) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(expression, func() {
		if _, err := snapshotAll.Run(context.Background()); err != nil {
			log.WithField("err", err).Error("Плановое сохранение местоположений завершилось ошибкой")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Infof("Запланировано сохранение текущих местоположений: %s", expression)
	return c, nil
}

func runApi(handler *api.Handler, settings config.Settings) {
	controller, err := api.NewController(handler, api.Options{
		AllowedOrigins: settings.CorsAllowedOrigins,
		RateLimitRPS:   settings.RateLimitRPS,
		RateLimitBurst: settings.RateLimitBurst,
	})
	if err != nil {
		log.Fatalf("Не удалось создать контроллер API: %v", err)
		return
	}
	log.Infof("Запуск API на порту %d", settings.ApiPort)
	if err := controller.Run(settings.ApiPort); err != nil {
		log.Fatal(err)
	}
}

func applyMigrations(migrationsPath, databaseUrl string) error {
	m, err := migrate.New(migrationsPath, databaseUrl)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("Нет новых миграций для применения")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %v", err)
	}

	log.Info("Миграции успешно применены")
	return nil
}
