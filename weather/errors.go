package weather

import "fmt"

// APIError represents an error status returned by OpenWeatherMap
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-related error
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

// MalformedError is returned when a 2xx body lacks the fields the card needs
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed weather response: " + e.Reason
}
