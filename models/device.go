package models

import "time"

// Device is the collector-side record for one reporting device: the most
// recent snapshot plus everything the collector derives from it.
type Device struct {
	DeviceID string       `json:"device_id"`
	Status   DeviceStatus `json:"status"`

	// Where the last report came from
	ReportIP string `json:"report_ip"`

	// Geo estimation of the reporting IP
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	// Liveness
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	State     string    `json:"state"` // "online", "warning", "offline"

	// Version policy evaluation of status.device_version
	VersionStatus   string `json:"version_status"`
	IsUpgradeNeeded bool   `json:"is_upgrade_needed"`
	UpgradeSeverity string `json:"upgrade_severity"`

	// Reports received since the collector started
	ReportCount int64 `json:"report_count"`
}

// CollectorStats is the summary returned by get_status and /api/status.
type CollectorStats struct {
	TotalDevices   int       `json:"total_devices"`
	OnlineDevices  int       `json:"online_devices"`
	WarningDevices int       `json:"warning_devices"`
	OfflineDevices int       `json:"offline_devices"`
	TotalReports   int64     `json:"total_reports"`
	LastUpdated    time.Time `json:"last_updated"`
}
