package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daniil11ru/mdmtrack/cli/tracker/domain"
	"github.com/daniil11ru/mdmtrack/cli/tracker/dto/response"
	"github.com/daniil11ru/mdmtrack/cli/tracker/types"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type HistoryProvider interface {
	Run(ctx context.Context, number string, days int) (response.History, error)
}

type LocationsProvider interface {
	Run(ctx context.Context) ([]response.CurrentLocation, error)
}

type DevicesProvider interface {
	Run(ctx context.Context) ([]response.Device, error)
}

type FleetSnapshotter interface {
	Run(ctx context.Context) (domain.SweepResult, error)
}

type HealthChecker interface {
	Run(ctx context.Context) error
}

type Handler struct {
	History        HistoryProvider
	Locations      LocationsProvider
	Devices        DevicesProvider
	SnapshotAll    FleetSnapshotter
	Health         HealthChecker
	RequestTimeout time.Duration
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func (h *Handler) GetDeviceHistory(c *gin.Context) {
	days := 0
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "параметр days должен быть положительным целым числом"})
			return
		}
		days = parsed
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	history, err := h.History.Run(ctx, c.Param("number"), days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) GetLocations(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	locations, err := h.Locations.Run(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *Handler) GetDevices(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	devices, err := h.Devices.Run(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, devices)
}

// SnapshotAllDevices не ограничивается RequestTimeout: у обхода свой
// таймаут на каждое устройство.
func (h *Handler) SnapshotAllDevices(c *gin.Context) {
	result, err := h.SnapshotAll.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SnapshotAll{
		Status:    "ok",
		RunID:     result.RunID,
		Evaluated: result.Evaluated,
		Inserted:  result.Inserted,
		Failed:    result.Failed,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Health.Run(ctx); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrDeviceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidWindow):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Request.URL.Path, "err": err}).Error("Ошибка обработки запроса")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
