package models

import "encoding/json"

// BandwidthSlots is the fixed length of both bandwidth windows: one bucket
// per rotation interval, trailing 30 intervals, oldest first. The tail
// bucket is the in-progress interval.
const BandwidthSlots = 30

// SyncChain is one (chain, height) pair from a device's sync report.
type SyncChain struct {
	ChainID uint32 `json:"chain_id"`
	Height  uint64 `json:"height"`
}

// ErrorCodes is a list of small device error codes. A plain []uint8 would
// base64-encode under encoding/json; the wire contract wants a JSON array
// of numbers, so it carries its own codec.
type ErrorCodes []uint8

func (e ErrorCodes) MarshalJSON() ([]byte, error) {
	codes := make([]int, len(e))
	for i, c := range e {
		codes[i] = int(c)
	}
	return json.Marshal(codes)
}

func (e *ErrorCodes) UnmarshalJSON(data []byte) error {
	var codes []int
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	out := make(ErrorCodes, len(codes))
	for i, c := range codes {
		out[i] = uint8(c)
	}
	*e = out
	return nil
}

// DeviceStatus is the full telemetry snapshot a device pushes on every
// report. Field names are the wire contract - do not rename. peers_count
// is the only field the collector defaults when absent; the zero value on
// decode covers that.
type DeviceStatus struct {
	DeviceID             string      `json:"device_id" bson:"device_id"`
	DeviceOwner          string      `json:"device_owner" bson:"device_owner"`
	DeviceVersion        string      `json:"device_version" bson:"device_version"`
	PeerID               string      `json:"peer_id" bson:"peer_id"`
	PeersCount           uint32      `json:"peers_count" bson:"peers_count"`
	BestBlockNumber      uint64      `json:"best_block_number" bson:"best_block_number"`
	FinalizedBlockNumber uint64      `json:"finalized_block_number" bson:"finalized_block_number"`
	UploadBandwidth      []uint64    `json:"upload_bandwidth" bson:"upload_bandwidth"`
	DownloadBandwidth    []uint64    `json:"download_bandwidth" bson:"download_bandwidth"`
	Uptime               int64       `json:"uptime" bson:"uptime"`
	MonitorType          uint8       `json:"monitor_type" bson:"monitor_type"`
	MonitorSyncChains    []SyncChain `json:"monitor_sync_chains" bson:"monitor_sync_chains"`
	Errors               ErrorCodes  `json:"errors" bson:"errors"`
}

// NewDeviceStatus returns a zero snapshot with both bandwidth windows at
// their fixed length.
func NewDeviceStatus() DeviceStatus {
	return DeviceStatus{
		UploadBandwidth:   make([]uint64, BandwidthSlots),
		DownloadBandwidth: make([]uint64, BandwidthSlots),
		MonitorSyncChains: []SyncChain{},
		Errors:            ErrorCodes{},
	}
}

// Clone returns a deep copy. Mutations on the original never show through
// a clone - the reporter depends on that for its point-in-time snapshots.
func (s DeviceStatus) Clone() DeviceStatus {
	out := s
	out.UploadBandwidth = append([]uint64(nil), s.UploadBandwidth...)
	out.DownloadBandwidth = append([]uint64(nil), s.DownloadBandwidth...)
	// make+copy keeps an empty chain list non-nil, so it still serializes
	// as [] rather than null
	out.MonitorSyncChains = make([]SyncChain, len(s.MonitorSyncChains))
	copy(out.MonitorSyncChains, s.MonitorSyncChains)
	out.Errors = append(ErrorCodes{}, s.Errors...)
	return out
}

// Ready reports whether the snapshot is eligible for reporting: the full
// identity triple must be set. All other fields are irrelevant here.
func (s DeviceStatus) Ready() bool {
	return s.DeviceID != "" && s.DeviceOwner != "" && s.PeerID != ""
}
