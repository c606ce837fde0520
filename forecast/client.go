package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devskill-org/energy-dashboard/utils"
)

const (
	// DefaultBaseURL is the hosted solar/wind model service
	DefaultBaseURL = "https://solarwind-model-1.onrender.com"
	// DefaultModel is the model name passed in the model query parameter
	DefaultModel = "lstm"
)

// The model only produces a solar series, so the weather label and
// temperature shown next to each day come from these placeholder tables.
var (
	weatherCycle     = []string{"sunny", "sunny", "cloudy", "rainy", "partly-cloudy", "sunny", "sunny"}
	temperatureCycle = []float64{24, 26, 22, 18, 23, 27, 25}
)

// Client calls the hosted forecasting model and reshapes its output
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	now        func() time.Time
	random     func() float64
}

// NewClient creates a client for the hosted forecasting model. No timeout is
// set on the HTTP client; callers bound requests through the context.
func NewClient() *Client {
	return NewClientWithHTTPClient(&http.Client{})
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		now:        time.Now,
		random:     rand.Float64,
	}
}

// SetBaseURL sets the base URL for the model service (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// SetModel selects the model name sent to the service
func (c *Client) SetModel(model string) {
	c.model = model
}

// SetClock replaces the time source used to date predictions
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// SetConfidenceSource replaces the random source behind the confidence
// column. fn must return values in [0, 1).
func (c *Client) SetConfidenceSource(fn func() float64) {
	c.random = fn
}

// Fetch requests a forecast. It never returns an error: failures are
// reported through Response.Error. Exactly one HTTP request is made for a
// valid request and none for an invalid one.
func (c *Client) Fetch(ctx context.Context, req Request) Response {
	if strings.TrimSpace(req.Location) == "" {
		return Failure(&ValidationError{Field: "location", Message: "please enter a location"})
	}

	values, err := c.predict(ctx, req)
	if err != nil {
		return Failure(err)
	}

	predictions, err := c.buildPredictions(req.Days, values)
	if err != nil {
		return Failure(err)
	}

	return Response{
		Success: true,
		Data: &Data{
			Location:       req.Location,
			ForecastPeriod: req.Days,
			Predictions:    predictions,
		},
	}
}

// predict performs the model call and returns the raw solar series
func (c *Client) predict(ctx context.Context, req Request) ([]float64, error) {
	reqURL, err := c.buildURL(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Operation: "predict", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var payload struct {
		Data []float64 `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	return payload.Data, nil
}

// buildURL constructs the predict endpoint URL with query parameters
func (c *Client) buildURL(req Request) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/predict/"

	query := u.Query()
	query.Set("model", c.model)
	query.Set("location", req.Location)
	query.Set("today", "false")
	query.Set("future_days", strconv.Itoa(req.Days))

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// buildPredictions maps the model series onto calendar days starting today
func (c *Client) buildPredictions(days int, values []float64) ([]Prediction, error) {
	if days < 0 {
		days = 0
	}
	if len(values) < days {
		return nil, fmt.Errorf("%w: got %d for %d days", ErrShortSeries, len(values), days)
	}

	today := c.now()
	predictions := make([]Prediction, 0, days)
	for i := 0; i < days; i++ {
		predictions = append(predictions, Prediction{
			Date:        utils.DateLabel(today.AddDate(0, 0, i)),
			Solar:       Round2(values[i]),
			Wind:        0,
			Confidence:  math.Round(85 + c.random()*10),
			Weather:     weatherCycle[i%len(weatherCycle)],
			Temperature: temperatureCycle[i%len(temperatureCycle)],
		})
	}
	return predictions, nil
}

// Round2 rounds v to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ Source = (*Client)(nil)
