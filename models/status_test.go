package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStatusWireFieldNames(t *testing.T) {
	data, err := json.Marshal(NewDeviceStatus())
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	expected := []string{
		"device_id", "device_owner", "device_version", "peer_id",
		"peers_count", "best_block_number", "finalized_block_number",
		"upload_bandwidth", "download_bandwidth", "uptime",
		"monitor_type", "monitor_sync_chains", "errors",
	}
	for _, field := range expected {
		assert.Contains(t, fields, field)
	}
	assert.Len(t, fields, len(expected), "no extra wire fields")
}

func TestErrorCodesMarshalAsNumbers(t *testing.T) {
	data, err := json.Marshal(ErrorCodes{1, 2, 255})
	require.NoError(t, err)
	assert.Equal(t, `[1,2,255]`, string(data))

	var decoded ErrorCodes
	require.NoError(t, json.Unmarshal([]byte(`[5,0,7]`), &decoded))
	assert.Equal(t, ErrorCodes{5, 0, 7}, decoded)
}

func TestPeersCountDefaultsToZeroWhenAbsent(t *testing.T) {
	payload := `{
		"device_id": "dev-1",
		"device_owner": "alice",
		"device_version": "1.2.0",
		"peer_id": "peer-1",
		"best_block_number": 10,
		"finalized_block_number": 8,
		"upload_bandwidth": [0],
		"download_bandwidth": [0],
		"uptime": 60,
		"monitor_type": 1,
		"monitor_sync_chains": [],
		"errors": []
	}`

	var status DeviceStatus
	require.NoError(t, json.Unmarshal([]byte(payload), &status))
	assert.Equal(t, uint32(0), status.PeersCount)
	assert.Equal(t, "dev-1", status.DeviceID)
}

func TestCloneIsDeep(t *testing.T) {
	status := NewDeviceStatus()
	status.UploadBandwidth[BandwidthSlots-1] = 10
	status.MonitorSyncChains = []SyncChain{{ChainID: 1, Height: 5}}
	status.Errors = ErrorCodes{9}

	clone := status.Clone()
	status.UploadBandwidth[BandwidthSlots-1] = 99
	status.MonitorSyncChains[0].Height = 99
	status.Errors[0] = 1

	assert.Equal(t, uint64(10), clone.UploadBandwidth[BandwidthSlots-1])
	assert.Equal(t, uint64(5), clone.MonitorSyncChains[0].Height)
	assert.Equal(t, ErrorCodes{9}, clone.Errors)
}

func TestSyncChainWireNames(t *testing.T) {
	data, err := json.Marshal(SyncChain{ChainID: 3, Height: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"chain_id":3,"height":42}`, string(data))
}
