package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetHealth returns OK
func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStatus returns collector status
func (h *Handler) GetStatus(c echo.Context) error {
	stats := h.registry.Stats()

	status := map[string]interface{}{
		"status":        "running",
		"uptime":        time.Since(h.startTime).String(),
		"registry_mode": h.registry.Mode(),
		"stats":         stats,
		"timestamp":     time.Now(),
	}
	return c.JSON(http.StatusOK, status)
}
