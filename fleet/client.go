package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client performs timed, credentialed requests against the session relay
// (or directly against the upstream tracking API). Session cookies issued by
// the server side are kept in a jar and replayed automatically, the way a
// browser using credentialed fetches would.
type Client struct {
	baseURL    string
	prefix     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the given base URL. All requests are bound
// by the supplied timeout; a request that exceeds it fails with ErrTimeout.
func NewClient(baseURL, prefix string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  prefix,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: zap.L(),
	}
}

// Login submits credentials form-encoded to the session endpoint and returns
// the sanitized user profile on success.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+c.prefix+"/session", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, mapLoginStatus(resp.StatusCode, body)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if user.ID == 0 {
		return nil, &InvalidRequestError{Message: "login response carries no user id"}
	}
	c.log.Debug("login succeeded", zap.Int("userId", user.ID))
	return &user, nil
}

// Logout calls the session-delete endpoint. Callers treat failures as
// best-effort; only transport errors are reported.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+c.prefix+"/session", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Devices fetches the device list.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.getJSON(ctx, c.prefix+"/devices", &devices); err != nil {
		return nil, err
	}
	c.log.Debug("fetched devices", zap.Int("count", len(devices)))
	return devices, nil
}

// Positions fetches the latest positions, optionally restricted to the
// given device identifiers via one repeated deviceId query parameter each.
func (c *Client) Positions(ctx context.Context, deviceIDs ...int) ([]Position, error) {
	endpoint := c.prefix + "/positions"
	if len(deviceIDs) > 0 {
		params := url.Values{}
		for _, id := range deviceIDs {
			params.Add("deviceId", strconv.Itoa(id))
		}
		endpoint += "?" + params.Encode()
	}
	var positions []Position
	if err := c.getJSON(ctx, endpoint, &positions); err != nil {
		return nil, err
	}
	c.log.Debug("fetched positions", zap.Int("count", len(positions)))
	return positions, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UnexpectedStatusError{Code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mapLoginStatus converts a non-2xx login response into the error taxonomy.
// A 400 passes the upstream message through when the body carries one.
func mapLoginStatus(status int, body []byte) error {
	switch {
	case status == http.StatusBadRequest:
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		return &InvalidRequestError{Message: msg}
	case status == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case status >= 500:
		return ErrUpstreamUnavailable
	default:
		return &UnexpectedStatusError{Code: status}
	}
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return err
}
