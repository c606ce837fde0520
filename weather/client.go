// Package weather fetches current conditions from OpenWeatherMap for the
// dashboard's city lookup.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public OpenWeatherMap API host
const DefaultBaseURL = "https://api.openweathermap.org"

// Snapshot is the weather shown on the dashboard card
type Snapshot struct {
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"` // °C
}

// Provider is anything that can look up current weather for a city
type Provider interface {
	Current(ctx context.Context, city string) (Snapshot, error)
}

// Client is an OpenWeatherMap current-weather client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client authenticated with apiKey
func NewClient(apiKey string) *Client {
	return NewClientWithHTTPClient(&http.Client{}, apiKey)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

type currentResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Name string `json:"name"`
}

// Current fetches the current weather for city in metric units
func (c *Client) Current(ctx context.Context, city string) (Snapshot, error) {
	u, err := url.Parse(c.baseURL + "/data/2.5/weather")
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, &NetworkError{Operation: "current weather", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Snapshot{}, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(body)}
	}

	var parsed currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Weather) == 0 || parsed.Main == nil {
		return Snapshot{}, &MalformedError{Reason: "missing weather[0] or main"}
	}

	return Snapshot{
		Description: parsed.Weather[0].Description,
		Temperature: parsed.Main.Temp,
	}, nil
}

// apiMessage extracts OpenWeatherMap's {"message": "..."} error text
func apiMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(body))
}

var _ Provider = (*Client)(nil)
