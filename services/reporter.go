package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// BandwidthInterval is how often the bandwidth window advances by one
// bucket, independent of the reporting cadence.
const BandwidthInterval = 60 * time.Second

// Reporter periodically snapshots the status store and pushes the
// snapshot to the collector. It also drives the bandwidth window
// rotation. Both loops run until Stop; in production that is process
// shutdown - a transport failure never stops either loop.
type Reporter struct {
	store    *StatusStore
	client   *TelemetryClient
	interval time.Duration
	stopChan chan struct{}
}

// NewReporter wires a reporter to an existing store. url is the
// collector's JSON-RPC endpoint, intervalSeconds the reporting cadence.
func NewReporter(store *StatusStore, url string, intervalSeconds uint) *Reporter {
	return &Reporter{
		store:    store,
		client:   NewTelemetryClient(url),
		interval: time.Duration(intervalSeconds) * time.Second,
		stopChan: make(chan struct{}),
	}
}

func (r *Reporter) Start() {
	log.Infof("Starting telemetry reporter (interval %s)", r.interval)
	go r.runBandwidthLoop()
	go r.runReportLoop()
}

func (r *Reporter) Stop() {
	close(r.stopChan)
}

// runBandwidthLoop advances the sliding bandwidth window once per
// BandwidthInterval. It rotates once immediately so the tail bucket
// starts a clean interval before the first increment lands.
func (r *Reporter) runBandwidthLoop() {
	r.store.rotateBandwidth()

	ticker := time.NewTicker(BandwidthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.store.rotateBandwidth()
		case <-r.stopChan:
			return
		}
	}
}

// runReportLoop ticks on a fixed period. time.Ticker schedules ticks
// relative to loop start, so a slow HTTP exchange does not drift the
// cadence.
func (r *Reporter) runReportLoop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reportOnce()
		case <-r.stopChan:
			return
		}
	}
}

// reportOnce takes one snapshot and pushes it if the identity triple is
// complete. Failures are logged and dropped - the next tick is the retry.
func (r *Reporter) reportOnce() {
	status := r.store.Snapshot()

	if !status.Ready() {
		log.Debug("skip update status: device identity incomplete")
		return
	}

	if err := r.client.UpdateStatus(status); err != nil {
		log.Errorf("update status to telemetry failed: %v", err)
	}
}
