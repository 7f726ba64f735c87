package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"nodepulse/config"
	"nodepulse/models"
	"nodepulse/utils"
)

// RegistryMode indicates which backing store is active
type RegistryMode string

const (
	RegistryModeRedis    RegistryMode = "redis"
	RegistryModeInMemory RegistryMode = "in-memory"
)

const deviceKeyPrefix = "nodepulse:device:"

// Registry holds the collector's view of every reporting device. The
// in-memory map is authoritative for queries; when Redis is up, every
// write is mirrored there and the map is rehydrated from it on startup,
// so a collector restart does not blank the fleet.
type Registry struct {
	cfg *config.Config
	geo *utils.GeoResolver

	devices      map[string]*models.Device
	devicesMutex sync.RWMutex
	totalReports int64

	redis       *redis.Client
	redisCtx    context.Context
	redisCancel context.CancelFunc
	mode        RegistryMode
	modeMutex   sync.RWMutex

	stopChan chan struct{}
}

func NewRegistry(cfg *config.Config, geo *utils.GeoResolver) *Registry {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Registry{
		cfg:         cfg,
		geo:         geo,
		devices:     make(map[string]*models.Device),
		redisCtx:    ctx,
		redisCancel: cancel,
		stopChan:    make(chan struct{}),
		mode:        RegistryModeInMemory,
	}

	if cfg.Redis.Enabled {
		r.connectRedis()
	} else {
		log.Println("Redis disabled in config, registry is in-memory only")
	}

	return r
}

// connectRedis attempts the Redis connection; failure is not fatal, the
// registry just runs without the mirror.
func (r *Registry) connectRedis() {
	if r.cfg.Redis.Address == "" {
		log.Println("Redis address not configured, registry is in-memory only")
		return
	}

	options := &redis.Options{
		Addr:         r.cfg.Redis.Address,
		Password:     r.cfg.Redis.Password,
		DB:           r.cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		PoolTimeout:  10 * time.Second,
	}

	if r.cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		log.Printf("TLS enabled for Redis connection")
	}

	r.redis = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pong, err := r.redis.Ping(ctx).Result()
	if err != nil {
		log.Warnf("Redis connection failed: %v", err)
		log.Warnf("Registry running in IN-MEMORY mode")
		r.setMode(RegistryModeInMemory)
		return
	}

	log.Printf("Redis connected successfully (response: %s)", pong)
	r.setMode(RegistryModeRedis)
	r.rehydrate()
}

func (r *Registry) setMode(mode RegistryMode) {
	r.modeMutex.Lock()
	defer r.modeMutex.Unlock()
	r.mode = mode
}

func (r *Registry) Mode() RegistryMode {
	r.modeMutex.RLock()
	defer r.modeMutex.RUnlock()
	return r.mode
}

// Start launches the Redis health-check loop.
func (r *Registry) Start() {
	go r.runHealthCheckLoop()
}

func (r *Registry) Stop() {
	close(r.stopChan)
	r.redisCancel()
	if r.redis != nil {
		r.redis.Close()
	}
}

func (r *Registry) runHealthCheckLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.checkRedisHealth()
		case <-r.stopChan:
			return
		}
	}
}

func (r *Registry) checkRedisHealth() {
	if r.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.redisCtx, 5*time.Second)
	defer cancel()

	if err := r.redis.Ping(ctx).Err(); err != nil {
		if r.Mode() == RegistryModeRedis {
			log.Warnf("Redis health check failed: %v, falling back to in-memory", err)
			r.setMode(RegistryModeInMemory)
		}
		return
	}

	if r.Mode() == RegistryModeInMemory && r.cfg.Redis.Enabled {
		log.Printf("Redis recovered, resuming mirror writes")
		r.setMode(RegistryModeRedis)
	}
}

// Upsert records one accepted update_status report. Geo lookup happens
// before the map lock - it can hit the network.
func (r *Registry) Upsert(status models.DeviceStatus, reportIP string) *models.Device {
	loc := r.geo.Lookup(reportIP)
	versionStatus, needsUpgrade, severity := utils.CheckVersionStatus(status.DeviceVersion, r.cfg.Versions)
	now := time.Now()

	r.devicesMutex.Lock()
	device, exists := r.devices[status.DeviceID]
	if !exists {
		device = &models.Device{
			DeviceID:  status.DeviceID,
			FirstSeen: now,
		}
		r.devices[status.DeviceID] = device
		log.Printf("New device registered: %s (owner %s) from %s", status.DeviceID, status.DeviceOwner, reportIP)
	}

	device.Status = status
	device.ReportIP = reportIP
	device.Country = loc.Country
	device.City = loc.City
	device.Lat = loc.Lat
	device.Lon = loc.Lon
	device.LastSeen = now
	device.State = "online"
	device.VersionStatus = versionStatus
	device.IsUpgradeNeeded = needsUpgrade
	device.UpgradeSeverity = severity
	device.ReportCount++
	r.totalReports++

	snapshot := *device
	r.devicesMutex.Unlock()

	r.mirrorToRedis(&snapshot)
	return &snapshot
}

// Get returns a copy of one device record with its state refreshed.
func (r *Registry) Get(deviceID string) (*models.Device, bool) {
	r.devicesMutex.RLock()
	device, exists := r.devices[deviceID]
	if !exists {
		r.devicesMutex.RUnlock()
		return nil, false
	}
	out := *device
	r.devicesMutex.RUnlock()

	utils.DeriveState(&out, r.cfg.StaleThresholdDuration())
	return &out, true
}

// List returns copies of every device record, states refreshed.
func (r *Registry) List() []*models.Device {
	r.devicesMutex.RLock()
	out := make([]*models.Device, 0, len(r.devices))
	for _, device := range r.devices {
		cp := *device
		out = append(out, &cp)
	}
	r.devicesMutex.RUnlock()

	threshold := r.cfg.StaleThresholdDuration()
	for _, device := range out {
		utils.DeriveState(device, threshold)
	}
	return out
}

// Stats summarizes the fleet for get_status and /api/status.
func (r *Registry) Stats() models.CollectorStats {
	devices := r.List()

	r.devicesMutex.RLock()
	total := r.totalReports
	r.devicesMutex.RUnlock()

	stats := models.CollectorStats{
		TotalDevices: len(devices),
		TotalReports: total,
		LastUpdated:  time.Now(),
	}
	for _, device := range devices {
		switch device.State {
		case "online":
			stats.OnlineDevices++
		case "warning":
			stats.WarningDevices++
		case "offline":
			stats.OfflineDevices++
		}
	}
	return stats
}

func (r *Registry) mirrorToRedis(device *models.Device) {
	if r.Mode() != RegistryModeRedis {
		return
	}

	data, err := json.Marshal(device)
	if err != nil {
		log.Warnf("Failed to marshal device %s for Redis: %v", device.DeviceID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.redisCtx, 5*time.Second)
	defer cancel()

	if err := r.redis.Set(ctx, deviceKeyPrefix+device.DeviceID, data, 0).Err(); err != nil {
		log.Warnf("Failed to mirror device %s to Redis: %v", device.DeviceID, err)
	}
}

// rehydrate loads devices mirrored by a previous run.
func (r *Registry) rehydrate() {
	ctx, cancel := context.WithTimeout(r.redisCtx, 15*time.Second)
	defer cancel()

	var loaded int
	iter := r.redis.Scan(ctx, 0, deviceKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var device models.Device
		if err := json.Unmarshal(data, &device); err != nil {
			log.Warnf("Skipping corrupt registry entry %s: %v", iter.Val(), err)
			continue
		}

		r.devicesMutex.Lock()
		if _, exists := r.devices[device.DeviceID]; !exists {
			r.devices[device.DeviceID] = &device
			loaded++
		}
		r.devicesMutex.Unlock()
	}
	if err := iter.Err(); err != nil {
		log.Warnf("Redis scan during rehydrate failed: %v", err)
	}

	if loaded > 0 {
		log.Printf("Rehydrated %d devices from Redis", loaded)
	}
}
