package pecron

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pecron-mqtt-bridge/pkg/logger"
)

// Regional API endpoints
const (
	RegionUS = "US"
	RegionEU = "EU"
	RegionCN = "CN"
)

var regionEndpoints = map[string]string{
	RegionUS: "https://api-us.pecron.com",
	RegionEU: "https://api-eu.pecron.com",
	RegionCN: "https://api-cn.pecron.com",
}

const (
	authHeader      = "Token"
	requestIDHeader = "X-Request-Id"
	defaultTimeout  = 30 * time.Second
)

// Switch actions accepted by InvokeAction
const (
	ActionSetACOutput = "set_ac_output"
	ActionSetDCOutput = "set_dc_output"
)

// API is the capability surface of the Pecron cloud the coordinator relies
// on. The coordinator owns exactly one authenticated API instance at a time;
// tests substitute a mock.
type API interface {
	// Login authenticates and stores the session token
	Login(ctx context.Context, email, password string) error

	// GetDevices lists the devices registered on the account
	GetDevices(ctx context.Context) ([]Device, error)

	// GetDeviceProperties fetches the current property set for one device
	GetDeviceProperties(ctx context.Context, device Device) (PropertySet, error)

	// GetProductTSL fetches the supported property codes for a product
	GetProductTSL(ctx context.Context, productKey string) ([]TSLProperty, error)

	// InvokeAction forwards a named control request for one device
	InvokeAction(ctx context.Context, device Device, action string, enabled bool) (ActionResult, error)

	// Close releases the session on the vendor side
	Close() error
}

// Client talks to the Pecron cloud API over HTTPS
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client for the given region (US, EU or CN)
func NewClient(region string) (*Client, error) {
	baseURL, ok := regionEndpoints[region]
	if !ok {
		return nil, fmt.Errorf("unsupported region %q", region)
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}, nil
}

// apiEnvelope is the common response wrapper; code 0 means success
type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Login authenticates with email/password and stores the session token
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var data struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/app/user/login", body, &data); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if data.Token == "" {
		return &APIError{Code: CodeLoginRejected, Message: "login response carried no token"}
	}

	c.token = data.Token
	logger.LogDebug("Pecron login succeeded for %s", email)
	return nil
}

// GetDevices lists the devices registered on the logged-in account
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var data struct {
		Devices []Device `json:"devices"`
	}
	if err := c.get(ctx, "/app/device/list", &data); err != nil {
		return nil, fmt.Errorf("device list: %w", err)
	}
	return data.Devices, nil
}

// GetDeviceProperties fetches the latest property bag for one device
func (c *Client) GetDeviceProperties(ctx context.Context, device Device) (PropertySet, error) {
	var data struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	path := fmt.Sprintf("/app/device/%s/properties", device.DeviceKey)
	if err := c.get(ctx, path, &data); err != nil {
		return PropertySet{}, fmt.Errorf("properties for %s: %w", device.DeviceKey, err)
	}
	return decodeProperties(data.Properties)
}

// GetProductTSL fetches the thing-spec property list for a product
func (c *Client) GetProductTSL(ctx context.Context, productKey string) ([]TSLProperty, error) {
	var data struct {
		Properties []TSLProperty `json:"properties"`
	}
	path := fmt.Sprintf("/app/product/%s/tsl", productKey)
	if err := c.get(ctx, path, &data); err != nil {
		return nil, fmt.Errorf("tsl for %s: %w", productKey, err)
	}
	return data.Properties, nil
}

// InvokeAction forwards a control request (AC/DC output on or off)
func (c *Client) InvokeAction(ctx context.Context, device Device, action string, enabled bool) (ActionResult, error) {
	switch action {
	case ActionSetACOutput, ActionSetDCOutput:
	default:
		return ActionResult{}, fmt.Errorf("unsupported action %q", action)
	}

	body := map[string]interface{}{
		"deviceKey": device.DeviceKey,
		"action":    action,
		"enabled":   enabled,
	}

	var result ActionResult
	if err := c.post(ctx, "/app/device/control", body, &result); err != nil {
		return ActionResult{}, fmt.Errorf("control %s on %s: %w", action, device.DeviceKey, err)
	}
	return result, nil
}

// Close logs out and discards the session token. Safe to call more than once.
func (c *Client) Close() error {
	if c.token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Best effort: the token expires server-side anyway
	if err := c.post(ctx, "/app/user/logout", nil, nil); err != nil {
		logger.LogDebug("Pecron logout failed (ignored): %v", err)
	}
	c.token = ""
	return nil
}

// CodeLoginRejected is synthesized when the cloud answers 200 without a token
const CodeLoginRejected = 401

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do performs one HTTP round trip and unwraps the vendor envelope.
// HTTP-level auth failures and non-zero envelope codes both surface as
// APIError so the classifier sees the vendor code.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", url, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set(authHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}
	if envelope.Code != 0 {
		return &APIError{Code: envelope.Code, Message: envelope.Msg}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode payload from %s: %w", url, err)
		}
	}
	return nil
}
