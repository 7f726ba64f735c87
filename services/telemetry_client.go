package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"nodepulse/models"
)

// RequestTimeout bounds every call to the collector. A hung collector
// surfaces as a transport error on the next tick, nothing worse.
const RequestTimeout = 30 * time.Second

// TelemetryClient speaks JSON-RPC 2.0 over HTTP POST to the collector.
// One reusable http.Client; the reporter constructs exactly one of these
// for its whole lifetime.
type TelemetryClient struct {
	url        string
	httpClient *http.Client
}

func NewTelemetryClient(url string) *TelemetryClient {
	return &TelemetryClient{
		url: url,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// call performs one request/response exchange. The only error outcomes
// are network-level failures (refused, timeout, DNS) and a response body
// that does not decode as a JSON-RPC envelope. A well-formed envelope
// carrying an error payload is NOT an error here - the caller decides
// what to log.
func (c *TelemetryClient) call(method string, params any, id int) (*models.RPCResponse, error) {
	var rawParams json.RawMessage
	if params != nil {
		var err error
		rawParams, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	reqBody := models.RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  rawParams,
		ID:      id,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error %d from %s", resp.StatusCode, method)
	}

	var rpcResp models.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &rpcResp, nil
}

// UpdateStatus pushes one snapshot to the collector. A JSON-RPC error in
// the response is logged and swallowed: the reporter's only retry is the
// next tick, so protocol-level rejections never escalate.
func (c *TelemetryClient) UpdateStatus(status models.DeviceStatus) error {
	resp, err := c.call("update_status", status, 1)
	if err != nil {
		return err
	}

	if resp.Result != nil {
		log.Debugf("update_status response: %s", resp.Result)
	} else if resp.Error != nil {
		log.Errorf("update_status error from collector: code=%d message=%q", resp.Error.Code, resp.Error.Message)
	}

	return nil
}

// GetStatus asks the collector for its view. Diagnostic callers only; the
// reporter loop never calls this.
func (c *TelemetryClient) GetStatus() (json.RawMessage, error) {
	resp, err := c.call("get_status", nil, 2)
	if err != nil {
		return nil, err
	}

	if resp.Result != nil {
		log.Infof("get_status response: %s", resp.Result)
	} else if resp.Error != nil {
		log.Errorf("get_status error from collector: code=%d message=%q", resp.Error.Code, resp.Error.Message)
	}

	return resp.Result, nil
}
