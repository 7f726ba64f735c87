package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepulse/config"
	"nodepulse/models"
)

func newTestRegistry() *Registry {
	cfg := &config.Config{
		Redis:  config.RedisConfig{Enabled: false},
		Alerts: config.AlertsConfig{StaleThreshold: 5},
		Versions: config.VersionsConfig{
			CurrentStable: "1.2.0",
			MinSupported:  "1.1.0",
			Deprecated:    "1.0.0",
		},
	}
	return NewRegistry(cfg, nil)
}

func TestRegistryUpsertAndGet(t *testing.T) {
	registry := newTestRegistry()

	status := models.NewDeviceStatus()
	status.DeviceID = "dev-1"
	status.DeviceVersion = "1.0.0"

	registry.Upsert(status, "203.0.113.9")

	device, found := registry.Get("dev-1")
	require.True(t, found)
	assert.Equal(t, "203.0.113.9", device.ReportIP)
	assert.Equal(t, "online", device.State)
	assert.Equal(t, "deprecated", device.VersionStatus)
	assert.Equal(t, "critical", device.UpgradeSeverity)
	assert.True(t, device.IsUpgradeNeeded)
	assert.False(t, device.FirstSeen.IsZero())

	_, found = registry.Get("unknown")
	assert.False(t, found)
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	registry := newTestRegistry()

	status := models.NewDeviceStatus()
	status.DeviceID = "dev-1"
	registry.Upsert(status, "203.0.113.9")

	device, _ := registry.Get("dev-1")
	device.State = "mangled"
	device.Status.PeersCount = 999

	fresh, _ := registry.Get("dev-1")
	assert.Equal(t, "online", fresh.State)
	assert.Equal(t, uint32(0), fresh.Status.PeersCount)
}

func TestRegistryStateDerivation(t *testing.T) {
	registry := newTestRegistry()

	status := models.NewDeviceStatus()
	status.DeviceID = "dev-1"
	registry.Upsert(status, "203.0.113.9")

	// Backdate the last report past the stale threshold
	registry.devicesMutex.Lock()
	registry.devices["dev-1"].LastSeen = time.Now().Add(-10 * time.Minute)
	registry.devicesMutex.Unlock()

	device, _ := registry.Get("dev-1")
	assert.Equal(t, "warning", device.State)

	registry.devicesMutex.Lock()
	registry.devices["dev-1"].LastSeen = time.Now().Add(-time.Hour)
	registry.devicesMutex.Unlock()

	device, _ = registry.Get("dev-1")
	assert.Equal(t, "offline", device.State)
}

func TestRegistryStats(t *testing.T) {
	registry := newTestRegistry()

	for _, id := range []string{"dev-1", "dev-2", "dev-3"} {
		status := models.NewDeviceStatus()
		status.DeviceID = id
		registry.Upsert(status, "203.0.113.9")
	}
	registry.devicesMutex.Lock()
	registry.devices["dev-3"].LastSeen = time.Now().Add(-time.Hour)
	registry.devicesMutex.Unlock()

	stats := registry.Stats()
	assert.Equal(t, 3, stats.TotalDevices)
	assert.Equal(t, 2, stats.OnlineDevices)
	assert.Equal(t, 1, stats.OfflineDevices)
	assert.Equal(t, int64(3), stats.TotalReports)
}
