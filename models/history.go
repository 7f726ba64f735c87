package models

import "time"

// DeviceSnapshot is one historical sample of a device's reported status,
// persisted by the history service.
type DeviceSnapshot struct {
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	DeviceID  string       `json:"device_id" bson:"device_id"`
	State     string       `json:"state" bson:"state"`
	Status    DeviceStatus `json:"status" bson:"status"`
}

// CollectorSnapshot is one historical sample of the whole fleet.
type CollectorSnapshot struct {
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	TotalDevices   int       `json:"total_devices" bson:"total_devices"`
	OnlineDevices  int       `json:"online_devices" bson:"online_devices"`
	WarningDevices int       `json:"warning_devices" bson:"warning_devices"`
	OfflineDevices int       `json:"offline_devices" bson:"offline_devices"`
	TotalReports   int64     `json:"total_reports" bson:"total_reports"`
}
