package services

import (
	"sync"

	"nodepulse/models"
)

// StatusStore owns the single DeviceStatus value for this process. Every
// other component only ever sees point-in-time copies via Snapshot. One
// RWMutex guards everything; setters and the bandwidth rotation serialize
// on it, so no increment can straddle a rotation boundary.
//
// The store is constructed explicitly and passed by pointer - there is no
// package-level singleton on purpose.
type StatusStore struct {
	mu     sync.RWMutex
	status models.DeviceStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{status: models.NewDeviceStatus()}
}

// Snapshot returns a deep copy of the current status. Safe to hold across
// suspension points; later setter calls never show through it.
func (s *StatusStore) Snapshot() models.DeviceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Clone()
}

func (s *StatusStore) SetDeviceID(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DeviceID = deviceID
}

func (s *StatusStore) SetDeviceOwner(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DeviceOwner = owner
}

func (s *StatusStore) SetDeviceVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DeviceVersion = version
}

func (s *StatusStore) SetPeerID(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.PeerID = peerID
}

// SetIdentity updates the whole identity triple under one lock
// acquisition, so a concurrent Snapshot never observes a half-written
// identity. The per-field setters stay for callers that learn the fields
// at different times.
func (s *StatusStore) SetIdentity(deviceID, owner, peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.DeviceID = deviceID
	s.status.DeviceOwner = owner
	s.status.PeerID = peerID
}

func (s *StatusStore) SetPeersCount(count uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.PeersCount = count
}

func (s *StatusStore) SetBestBlockNumber(number uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.BestBlockNumber = number
}

func (s *StatusStore) SetFinalizedBlockNumber(number uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.FinalizedBlockNumber = number
}

func (s *StatusStore) SetUptime(seconds int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Uptime = seconds
}

func (s *StatusStore) SetMonitorSyncStatus(monitorType uint8, chains []models.SyncChain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.MonitorType = monitorType
	s.status.MonitorSyncChains = append([]models.SyncChain(nil), chains...)
}

func (s *StatusStore) SetErrors(codes []uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Errors = append(models.ErrorCodes(nil), codes...)
}

// AddUpload adds n bytes to the in-progress upload bucket (the tail of the
// window).
func (s *StatusStore) AddUpload(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.status.UploadBandwidth) == 0 {
		return
	}
	s.status.UploadBandwidth[len(s.status.UploadBandwidth)-1] += n
}

// AddDownload adds n bytes to the in-progress download bucket.
func (s *StatusStore) AddDownload(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.status.DownloadBandwidth) == 0 {
		return
	}
	s.status.DownloadBandwidth[len(s.status.DownloadBandwidth)-1] += n
}

// rotateBandwidth evicts the oldest bucket from both windows and opens a
// fresh zero bucket at the tail. Length stays at BandwidthSlots. Called by
// the reporter's rotation loop, never by external callers.
func (s *StatusStore) rotateBandwidth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.UploadBandwidth = rotate(s.status.UploadBandwidth)
	s.status.DownloadBandwidth = rotate(s.status.DownloadBandwidth)
}

func rotate(window []uint64) []uint64 {
	if len(window) == 0 {
		return window
	}
	copy(window, window[1:])
	window[len(window)-1] = 0
	return window
}
