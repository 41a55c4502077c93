package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the HTTP client for talking to the API server
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
	username    string
}

// envelope mirrors the server's stable response shape.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest executes an HTTP request, attaching the bearer token when logged in
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// call executes a request and unmarshals the envelope's data payload
func (c *Client) call(method, path string, body, result interface{}) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := ""
		var data map[string]interface{}
		if json.Unmarshal(env.Data, &data) == nil {
			if d, ok := data["detail"].(string); ok {
				detail = ": " + d
			}
		}
		return fmt.Errorf("%s%s (HTTP %d)", env.Message, detail, resp.StatusCode)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return nil
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

// Login authenticates and stores the access token for later calls
func (c *Client) Login(username, password string) error {
	var out struct {
		Access string `json:"access"`
		User   struct {
			Username string `json:"username"`
			IsStaff  bool   `json:"is_staff"`
		} `json:"user"`
	}
	if err := c.call("POST", "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out); err != nil {
		return err
	}

	c.accessToken = out.Access
	c.username = out.User.Username
	return nil
}

// LoggedIn reports whether a login succeeded earlier
func (c *Client) LoggedIn() bool {
	return c.accessToken != ""
}

// Get fetches a path and decodes its data payload into result
func (c *Client) Get(path string, result interface{}) error {
	return c.call("GET", path, nil, result)
}

// Post sends a payload and decodes the data payload into result
func (c *Client) Post(path string, body, result interface{}) error {
	return c.call("POST", path, body, result)
}

// Patch sends a partial update and decodes the data payload into result
func (c *Client) Patch(path string, body, result interface{}) error {
	return c.call("PATCH", path, body, result)
}
