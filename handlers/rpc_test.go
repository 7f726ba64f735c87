package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodepulse/config"
	"nodepulse/models"
	"nodepulse/services"
)

func newTestHandler() (*Handler, *services.Registry) {
	cfg := &config.Config{
		Redis:   config.RedisConfig{Enabled: false},
		MongoDB: config.MongoDBConfig{Enabled: false},
		Alerts:  config.AlertsConfig{StaleThreshold: 5},
		Versions: config.VersionsConfig{
			CurrentStable: "1.2.0",
			MinSupported:  "1.1.0",
			Deprecated:    "1.0.0",
		},
	}
	// nil geo resolver: Lookup degrades to Unknown, no network calls in tests
	registry := services.NewRegistry(cfg, nil)
	mongo, _ := services.NewMongoDBService(cfg)
	return NewHandler(cfg, registry, mongo), registry
}

func callRPC(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, models.RPCResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.HandleRPC(c))

	var resp models.RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestUpdateStatusAccepted(t *testing.T) {
	h, registry := newTestHandler()

	status := models.NewDeviceStatus()
	status.DeviceID = "dev-1"
	status.DeviceOwner = "alice"
	status.PeerID = "peer-1"
	status.DeviceVersion = "1.2.0"
	status.PeersCount = 12

	params, err := json.Marshal(status)
	require.NoError(t, err)
	envelope, err := json.Marshal(models.RPCRequest{JSONRPC: "2.0", Method: "update_status", Params: params, ID: 1})
	require.NoError(t, err)

	rec, resp := callRPC(t, h, string(envelope))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Result))
	assert.Equal(t, 1, resp.ID)

	device, found := registry.Get("dev-1")
	require.True(t, found)
	assert.Equal(t, uint32(12), device.Status.PeersCount)
	assert.Equal(t, "online", device.State)
	assert.Equal(t, "current", device.VersionStatus)
	assert.Equal(t, int64(1), device.ReportCount)
}

func TestUpdateStatusIsIdempotentPerDevice(t *testing.T) {
	h, registry := newTestHandler()

	for i, peers := range []uint32{3, 8} {
		status := models.NewDeviceStatus()
		status.DeviceID = "dev-1"
		status.PeersCount = peers

		params, _ := json.Marshal(status)
		envelope, _ := json.Marshal(models.RPCRequest{JSONRPC: "2.0", Method: "update_status", Params: params, ID: i + 1})
		callRPC(t, h, string(envelope))
	}

	device, found := registry.Get("dev-1")
	require.True(t, found)
	assert.Equal(t, uint32(8), device.Status.PeersCount, "last write wins")
	assert.Equal(t, int64(2), device.ReportCount)
	assert.Len(t, registry.List(), 1)
}

func TestRPCParseError(t *testing.T) {
	h, _ := newTestHandler()
	_, resp := callRPC(t, h, "{not json")
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32700, resp.Error.Code)
}

func TestRPCInvalidVersion(t *testing.T) {
	h, _ := newTestHandler()
	_, resp := callRPC(t, h, `{"jsonrpc":"1.0","method":"update_status","params":{},"id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32600, resp.Error.Code)
}

func TestRPCMethodNotFound(t *testing.T) {
	h, _ := newTestHandler()
	_, resp := callRPC(t, h, `{"jsonrpc":"2.0","method":"save_data","params":{},"id":7}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, 7, resp.ID)
}

func TestUpdateStatusRequiresDeviceID(t *testing.T) {
	h, _ := newTestHandler()
	_, resp := callRPC(t, h, `{"jsonrpc":"2.0","method":"update_status","params":{"device_id":""},"id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestGetStatusMethod(t *testing.T) {
	h, _ := newTestHandler()
	_, resp := callRPC(t, h, `{"jsonrpc":"2.0","method":"get_status","params":null,"id":2}`)

	require.Nil(t, resp.Error)
	assert.Equal(t, 2, resp.ID)

	var stats models.CollectorStats
	require.NoError(t, json.Unmarshal(resp.Result, &stats))
	assert.Equal(t, 0, stats.TotalDevices)
}
