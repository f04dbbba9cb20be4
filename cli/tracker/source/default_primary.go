package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/mdmtrack/cli/tracker/metrics"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Пространство ключей рекомендательных блокировок истории местоположений.
const historyLockNamespace int32 = 0x4c48

type DefaultPrimary struct {
	db *gorm.DB
}

func NewDefaultPrimary(conn *sql.DB) (*DefaultPrimary, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return &DefaultPrimary{db: db}, nil
}

func (s *DefaultPrimary) GetDeviceByNumber(ctx context.Context, number string) (out.Device, error) {
	var device out.Device

	err := s.db.WithContext(ctx).
		Table("devices").
		Select("id, number, description, imei, info").
		Where("number = ?", number).
		Take(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out.Device{}, fmt.Errorf("%w: %s", types.ErrDeviceNotFound, number)
	}
	if err != nil {
		return out.Device{}, err
	}

	return device, nil
}

func (s *DefaultPrimary) GetDeviceSummaries(ctx context.Context, filter filter.DeviceSummaries) ([]out.DeviceSummary, error) {
	const q = `
		SELECT
			d.id,
			d.number,
			d.description,
			COALESCE(lc.log_count, 0) AS log_count,
			COALESCE(hc.history_count, 0) AS history_count
		FROM devices d
		LEFT JOIN (
			SELECT deviceid, COUNT(*) AS log_count
			FROM plugin_devicelog_log
			WHERE message ILIKE ?
			GROUP BY deviceid
		) lc ON lc.deviceid = d.id
		LEFT JOIN (
			SELECT device_id, COUNT(*) AS history_count
			FROM location_history
			WHERE recorded_at >= ?
			GROUP BY device_id
		) hc ON hc.device_id = d.id
		WHERE d.info IS NOT NULL
		ORDER BY d.description, d.number
	`
	var summaries []out.DeviceSummary
	if err := s.db.WithContext(ctx).Raw(q, "%"+filter.LogPattern+"%", filter.HistorySince).Scan(&summaries).Error; err != nil {
		return nil, err
	}

	return summaries, nil
}

func (s *DefaultPrimary) GetLogCandidates(ctx context.Context, filter filter.LogCandidates) ([]out.LogRecord, error) {
	var records []out.LogRecord

	q := s.db.WithContext(ctx).
		Table("plugin_devicelog_log").
		Select("deviceid, createtime, message").
		Where("deviceid = ? AND createtime > ?", filter.DeviceID, filter.SinceMs)

	if len(filter.Patterns) > 0 {
		conditions := make([]string, 0, len(filter.Patterns))
		args := make([]interface{}, 0, len(filter.Patterns))
		for _, pattern := range filter.Patterns {
			conditions = append(conditions, "message ILIKE ?")
			args = append(args, "%"+pattern+"%")
		}
		q = q.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}

	if err := q.Order("createtime ASC").Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (s *DefaultPrimary) GetHistory(ctx context.Context, filter filter.History) ([]out.HistoryRecord, error) {
	var records []out.HistoryRecord

	err := s.db.WithContext(ctx).
		Table("location_history").
		Select("device_id, lat, lon, recorded_at, source").
		Where("device_id = ? AND recorded_at >= ?", filter.DeviceID, filter.Since).
		Order("recorded_at ASC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *DefaultPrimary) GetLiveLocation(ctx context.Context, deviceID int32) (*out.LiveRecord, error) {
	var row struct {
		Info datatypes.JSON
	}

	err := s.db.WithContext(ctx).
		Table("devices").
		Select("info").
		Where("id = ?", deviceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseLiveRecord(deviceID, row.Info)
}

func (s *DefaultPrimary) GetAllLiveLocations(ctx context.Context) ([]out.DeviceLiveLocation, error) {
	var devices []out.Device

	err := s.db.WithContext(ctx).
		Table("devices").
		Select("id, number, description, imei, info").
		Where("info IS NOT NULL").
		Order("number").
		Scan(&devices).Error
	if err != nil {
		return nil, err
	}

	result := make([]out.DeviceLiveLocation, 0, len(devices))
	for _, device := range devices {
		live, err := ParseLiveRecord(device.ID, device.Info)
		if err != nil {
			metrics.RecordsSkipped.WithLabelValues(string(types.KindCurrent)).Inc()
			log.WithFields(log.Fields{"device_id": device.ID, "err": err}).Debug("Документ состояния устройства пропущен")
			live = nil
		}
		result = append(result, out.DeviceLiveLocation{Device: device, Live: live})
	}

	return result, nil
}

func (s *DefaultPrimary) InsertHistoryIfAbsent(ctx context.Context, snapshot insert.Snapshot) (bool, error) {
	if snapshot.Source == "" {
		return false, fmt.Errorf("источник снимка не может быть пустым")
	}

	const q = `
		INSERT INTO location_history (device_id, lat, lon, recorded_at, source)
		SELECT ?::integer, ?::double precision, ?::double precision, ?::timestamptz, ?::text
		WHERE NOT EXISTS (
			SELECT 1
			FROM location_history
			WHERE device_id = ?
				AND recorded_at >= ?
				AND recorded_at <= ?
		)
	`

	recordedAt := snapshot.RecordedAt.UTC()
	windowStart := recordedAt.Add(-snapshot.MinSpacing)

	inserted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокировка на устройство сериализует проверку окна и вставку до конца транзакции.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?::integer, ?::integer)", historyLockNamespace, snapshot.DeviceID).Error; err != nil {
			return fmt.Errorf("не удалось получить блокировку устройства %d: %w", snapshot.DeviceID, err)
		}

		res := tx.Exec(q,
			snapshot.DeviceID, snapshot.Latitude, snapshot.Longitude, recordedAt, snapshot.Source,
			snapshot.DeviceID, windowStart, recordedAt,
		)
		if res.Error != nil {
			return res.Error
		}

		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}

func (s *DefaultPrimary) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
