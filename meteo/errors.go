package meteo

import (
	"fmt"
	"net/http"
)

// APIError is a non-200 answer from MET
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("met api error %d: %s", e.StatusCode, e.Message)
}

// Throttled reports whether MET asked the client to slow down
func (e *APIError) Throttled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// LocationError is returned for coordinates outside the valid range
type LocationError struct {
	Field string
	Value float64
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("invalid %s: %g", e.Field, e.Value)
}

// NetworkError wraps transport failures
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
