package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"nodepulse/config"
	"nodepulse/models"
)

// AlertService walks the registry on a fixed cadence and fires alert
// events for devices reporting error codes, devices gone quiet, and
// devices running a deprecated version. Events go to MongoDB and, when
// configured, to Discord. A per-device-per-kind cooldown keeps a sick
// device from flooding the channel.
type AlertService struct {
	cfg      *config.Config
	registry *Registry
	mongo    *MongoDBService
	discord  *DiscordNotifier

	lastFired  map[string]time.Time // key: deviceID + "/" + kind
	firedMutex sync.Mutex

	stopChan chan struct{}
}

func NewAlertService(cfg *config.Config, registry *Registry, mongo *MongoDBService, discord *DiscordNotifier) *AlertService {
	return &AlertService{
		cfg:       cfg,
		registry:  registry,
		mongo:     mongo,
		discord:   discord,
		lastFired: make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}
}

func (as *AlertService) Start() {
	log.Println("Starting Alert Service...")
	ticker := time.NewTicker(as.cfg.AlertEvaluateIntervalDuration())

	go func() {
		for {
			select {
			case <-ticker.C:
				as.Evaluate()
			case <-as.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (as *AlertService) Stop() {
	close(as.stopChan)
}

// Evaluate runs all built-in rules over the current fleet.
func (as *AlertService) Evaluate() {
	for _, device := range as.registry.List() {
		if len(device.Status.Errors) > 0 {
			as.fire(models.AlertEvent{
				DeviceID: device.DeviceID,
				Kind:     models.AlertKindDeviceErrors,
				Severity: "warning",
				Message:  fmt.Sprintf("device %s reported %d error code(s): %v", device.DeviceID, len(device.Status.Errors), device.Status.Errors),
			})
		}

		if device.State == "offline" {
			as.fire(models.AlertEvent{
				DeviceID: device.DeviceID,
				Kind:     models.AlertKindDeviceOffline,
				Severity: "critical",
				Message:  fmt.Sprintf("device %s has not reported since %s", device.DeviceID, device.LastSeen.Format(time.RFC3339)),
			})
		}

		if device.VersionStatus == "deprecated" {
			as.fire(models.AlertEvent{
				DeviceID: device.DeviceID,
				Kind:     models.AlertKindVersionDeprecated,
				Severity: "critical",
				Message:  fmt.Sprintf("device %s runs deprecated version %s (minimum supported: %s)", device.DeviceID, device.Status.DeviceVersion, as.cfg.Versions.MinSupported),
			})
		}
	}
}

// fire emits one event unless the same device/kind fired inside the
// cooldown window.
func (as *AlertService) fire(event models.AlertEvent) {
	key := event.DeviceID + "/" + event.Kind

	as.firedMutex.Lock()
	if last, ok := as.lastFired[key]; ok && time.Since(last) < as.cfg.AlertCooldownDuration() {
		as.firedMutex.Unlock()
		return
	}
	as.lastFired[key] = time.Now()
	as.firedMutex.Unlock()

	event.ID = fmt.Sprintf("alert_%d", time.Now().UnixNano())
	event.Timestamp = time.Now()

	log.Printf("ALERT [%s] %s: %s", event.Severity, event.Kind, event.Message)

	if as.mongo.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := as.mongo.InsertAlertEvent(ctx, event); err != nil {
			log.Warnf("Failed to persist alert to MongoDB: %v", err)
		}
		cancel()
	}

	if err := as.discord.SendAlert(event); err != nil {
		log.Warnf("Failed to notify Discord: %v", err)
	}
}
