package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

// Connect открывает клиент Redis по настройкам хранилища и проверяет соединение.
func Connect(ctx context.Context, settings map[string]string) (*redis.Client, error) {
	host := settings["host"]
	if host == "" {
		host = "localhost"
	}
	port := settings["port"]
	if port == "" {
		log.Warn("Ключ 'port' не найден в конфигурации Redis. Используется значение по умолчанию '6379'.")
		port = "6379"
	}

	db := 0
	if raw := settings["db"]; raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("некорректный номер базы Redis %q: %w", raw, err)
		}
		db = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: settings["password"],
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis недоступен: %w", err)
	}

	return client, nil
}

// GetJSON возвращает false без ошибки, если ключа нет.
func (r *redisRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("не удалось разобрать значение кэша %s: %w", key, err)
	}
	return true, nil
}

func (r *redisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать значение кэша %s: %w", key, err)
	}

	return r.client.Set(ctx, key, data, expiration).Err()
}
