package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// GetDevices lists every known device with derived state.
func (h *Handler) GetDevices(c echo.Context) error {
	devices := h.registry.List()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	})
}

// GetDevice returns one device record by device_id.
func (h *Handler) GetDevice(c echo.Context) error {
	device, found := h.registry.Get(c.Param("id"))
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "device not found"})
	}
	return c.JSON(http.StatusOK, device)
}

// GetDeviceHistory returns persisted snapshots for one device.
// Query params: hours (default 24), limit (default 500).
func (h *Handler) GetDeviceHistory(c echo.Context) error {
	if !h.mongo.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history is disabled"})
	}

	hours := 24
	if v := c.QueryParam("hours"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			hours = p
		}
	}
	limit := int64(500)
	if v := c.QueryParam("limit"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil && p > 0 {
			limit = p
		}
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	snapshots, err := h.mongo.GetDeviceHistory(c.Request().Context(), c.Param("id"), since, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"device_id": c.Param("id"),
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// GetAlerts returns the most recent alert events.
func (h *Handler) GetAlerts(c echo.Context) error {
	if !h.mongo.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "alert history is disabled"})
	}

	limit := int64(100)
	if v := c.QueryParam("limit"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil && p > 0 {
			limit = p
		}
	}

	events, err := h.mongo.GetRecentAlerts(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": events,
		"count":  len(events),
	})
}
