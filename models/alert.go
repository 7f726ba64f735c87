package models

import "time"

// AlertEvent records one fired alert. Alerts are generated by the
// collector's evaluation loop, not configured by users, so there is no
// separate rule object - the Kind names the built-in rule that fired.
type AlertEvent struct {
	ID        string    `json:"id" bson:"_id"`
	DeviceID  string    `json:"device_id" bson:"device_id"`
	Kind      string    `json:"kind" bson:"kind"`
	Severity  string    `json:"severity" bson:"severity"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Built-in alert kinds
const (
	AlertKindDeviceErrors      = "device_errors"
	AlertKindDeviceOffline     = "device_offline"
	AlertKindVersionDeprecated = "version_deprecated"
)
