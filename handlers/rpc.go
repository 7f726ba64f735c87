package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"nodepulse/models"
)

// HandleRPC is the collector's JSON-RPC 2.0 endpoint. Devices POST
// update_status envelopes here; get_status returns the collector's fleet
// summary. Envelope errors use the standard JSON-RPC error codes; the
// HTTP status stays 200 for anything that parsed far enough to answer.
func (h *Handler) HandleRPC(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, rpcErrorResponse(0, -32700, "Parse error"))
	}

	var req models.RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, rpcErrorResponse(0, -32700, "Parse error"))
	}

	if req.JSONRPC != "2.0" {
		return c.JSON(http.StatusBadRequest, rpcErrorResponse(req.ID, -32600, "Invalid Request"))
	}

	switch req.Method {
	case "update_status":
		return h.handleUpdateStatus(c, req)
	case "get_status":
		return h.handleGetStatus(c, req)
	default:
		return c.JSON(http.StatusOK, rpcErrorResponse(req.ID, -32601, "Method not found"))
	}
}

func (h *Handler) handleUpdateStatus(c echo.Context, req models.RPCRequest) error {
	var status models.DeviceStatus
	if err := json.Unmarshal(req.Params, &status); err != nil {
		return c.JSON(http.StatusOK, rpcErrorResponse(req.ID, -32602, "Invalid params"))
	}

	if status.DeviceID == "" {
		return c.JSON(http.StatusOK, rpcErrorResponse(req.ID, -32602, "Invalid params: device_id required"))
	}

	device := h.registry.Upsert(status, c.RealIP())
	log.Debugf("update_status from %s (peers=%d best=%d)", device.DeviceID, status.PeersCount, status.BestBlockNumber)

	return c.JSON(http.StatusOK, rpcResultResponse(req.ID, models.UpdateStatusResult{OK: true}))
}

func (h *Handler) handleGetStatus(c echo.Context, req models.RPCRequest) error {
	return c.JSON(http.StatusOK, rpcResultResponse(req.ID, h.registry.Stats()))
}

func rpcResultResponse(id int, result any) models.RPCResponse {
	raw, err := json.Marshal(result)
	if err != nil {
		return rpcErrorResponse(id, -32603, "Internal error")
	}
	return models.RPCResponse{JSONRPC: "2.0", Result: raw, ID: id}
}

func rpcErrorResponse(id int, code int, message string) models.RPCResponse {
	return models.RPCResponse{
		JSONRPC: "2.0",
		Error:   &models.RPCError{Code: code, Message: message},
		ID:      id,
	}
}
