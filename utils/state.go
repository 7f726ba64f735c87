package utils

import (
	"time"

	"nodepulse/models"
)

// DeriveState classifies a device by how long ago it last reported.
// A device inside the stale threshold is online; up to 3x the threshold
// is a warning; beyond that it is offline. The fleet is push-only, so
// report recency is the only liveness signal the collector has.
func DeriveState(d *models.Device, staleThreshold time.Duration) {
	sinceLast := time.Since(d.LastSeen)

	switch {
	case sinceLast <= staleThreshold:
		d.State = "online"
	case sinceLast <= 3*staleThreshold:
		d.State = "warning"
	default:
		d.State = "offline"
	}
}
