package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepulse/models"
)

func TestUpdateStatusSendsWellFormedEnvelope(t *testing.T) {
	var captured models.RPCRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// assert, not require: FailNow must not run off the test goroutine
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(models.RPCResponse{JSONRPC: "2.0", Result: json.RawMessage(`{"ok":true}`), ID: 1})
	}))
	defer server.Close()

	status := models.NewDeviceStatus()
	status.DeviceID = "dev-1"
	status.DeviceOwner = "alice"
	status.PeerID = "peer-1"
	status.Errors = models.ErrorCodes{3, 7}

	client := NewTelemetryClient(server.URL)
	require.NoError(t, client.UpdateStatus(status))

	assert.Equal(t, "2.0", captured.JSONRPC)
	assert.Equal(t, "update_status", captured.Method)
	assert.Equal(t, 1, captured.ID)

	var params map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(captured.Params, &params))
	for _, field := range []string{
		"device_id", "device_owner", "device_version", "peer_id",
		"peers_count", "best_block_number", "finalized_block_number",
		"upload_bandwidth", "download_bandwidth", "uptime",
		"monitor_type", "monitor_sync_chains", "errors",
	} {
		assert.Contains(t, params, field)
	}
	assert.Equal(t, `[3,7]`, string(params["errors"]), "error codes go out as numbers, not base64")
}

func TestUpdateStatusProtocolErrorIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.RPCResponse{
			JSONRPC: "2.0",
			Error:   &models.RPCError{Code: -1, Message: "bad"},
			ID:      1,
		})
	}))
	defer server.Close()

	client := NewTelemetryClient(server.URL)
	assert.NoError(t, client.UpdateStatus(models.NewDeviceStatus()))
}

func TestUpdateStatusDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewTelemetryClient(server.URL)
	assert.Error(t, client.UpdateStatus(models.NewDeviceStatus()))
}

func TestUpdateStatusHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTelemetryClient(server.URL)
	assert.Error(t, client.UpdateStatus(models.NewDeviceStatus()))
}

func TestUpdateStatusNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewTelemetryClient(url)
	assert.Error(t, client.UpdateStatus(models.NewDeviceStatus()))
}

func TestGetStatusEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.RPCRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "get_status", req.Method)
		assert.Equal(t, 2, req.ID)
		assert.Equal(t, "null", string(req.Params), "get_status sends params: null")

		json.NewEncoder(w).Encode(models.RPCResponse{JSONRPC: "2.0", Result: json.RawMessage(`{"total_devices":1}`), ID: 2})
	}))
	defer server.Close()

	client := NewTelemetryClient(server.URL)
	result, err := client.GetStatus()
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_devices":1}`, string(result))
}
