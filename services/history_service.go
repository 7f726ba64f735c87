package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"nodepulse/models"
)

// HistoryService samples the registry on a fixed cadence and persists the
// samples to MongoDB: one collector-wide snapshot plus one snapshot per
// device that reported since the previous sample.
type HistoryService struct {
	registry *Registry
	mongo    *MongoDBService
	stopChan chan struct{}

	lastSample time.Time
}

func NewHistoryService(registry *Registry, mongo *MongoDBService) *HistoryService {
	return &HistoryService{
		registry: registry,
		mongo:    mongo,
		stopChan: make(chan struct{}),
	}
}

func (hs *HistoryService) Start() {
	if !hs.mongo.Enabled() {
		log.Println("History Service disabled (no MongoDB)")
		return
	}
	log.Println("Starting History Service...")

	ticker := time.NewTicker(5 * time.Minute)

	go func() {
		hs.collectSnapshot()

		for {
			select {
			case <-ticker.C:
				hs.collectSnapshot()
			case <-hs.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (hs *HistoryService) Stop() {
	close(hs.stopChan)
}

func (hs *HistoryService) collectSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now()
	stats := hs.registry.Stats()

	collectorSnap := models.CollectorSnapshot{
		Timestamp:      now,
		TotalDevices:   stats.TotalDevices,
		OnlineDevices:  stats.OnlineDevices,
		WarningDevices: stats.WarningDevices,
		OfflineDevices: stats.OfflineDevices,
		TotalReports:   stats.TotalReports,
	}
	if err := hs.mongo.InsertCollectorSnapshot(ctx, collectorSnap); err != nil {
		log.Warnf("Failed to persist collector snapshot: %v", err)
	}

	var persisted int
	for _, device := range hs.registry.List() {
		// Skip devices that went quiet before the previous sample; their
		// last snapshot is already on record.
		if !hs.lastSample.IsZero() && device.LastSeen.Before(hs.lastSample) {
			continue
		}

		snap := models.DeviceSnapshot{
			Timestamp: now,
			DeviceID:  device.DeviceID,
			State:     device.State,
			Status:    device.Status,
		}
		if err := hs.mongo.InsertDeviceSnapshot(ctx, snap); err != nil {
			log.Warnf("Failed to persist snapshot for %s: %v", device.DeviceID, err)
			continue
		}
		persisted++
	}

	hs.lastSample = now
	log.Debugf("History sample: %d device snapshots persisted", persisted)
}
