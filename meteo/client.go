package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://api.met.no/weatherapi/locationforecast/2.0"

// Client talks to the MET Norway locationforecast API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(userAgent string) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: 30 * time.Second}, userAgent)
}

// NewClientWithHTTPClient creates a client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		userAgent:  userAgent,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetCompact fetches the compact forecast for loc
func (c *Client) GetCompact(ctx context.Context, loc Location) (*Forecast, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL("compact", loc)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: "compact forecast", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var forecast Forecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &forecast, nil
}

func (c *Client) buildURL(endpoint string, loc Location) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	u.Path = fmt.Sprintf("%s/%s", u.Path, endpoint)

	query := u.Query()
	// MET rejects more than four decimals
	query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	query.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	if loc.Altitude != nil {
		query.Set("altitude", strconv.Itoa(*loc.Altitude))
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// ValidateLocation checks the coordinate ranges
func ValidateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return &LocationError{Field: "latitude", Value: loc.Latitude}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return &LocationError{Field: "longitude", Value: loc.Longitude}
	}
	if loc.Altitude != nil && *loc.Altitude < 0 {
		return &LocationError{Field: "altitude", Value: float64(*loc.Altitude)}
	}
	return nil
}
