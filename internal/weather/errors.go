package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes presented to clients. Provider-reported codes pass
// through unchanged.
const (
	CodeMissingQuery     = 1003
	CodeLocationNotFound = 1006
	CodeInvalidDays      = 1007
	CodeInvalidLocation  = 1008
	CodeNoStations       = 1020
	CodeDataUnavailable  = 1021
	CodeProxyRejected    = 4030
	CodeInvalidPayload   = 9000
	CodeNetwork          = 9100
	CodeTimeout          = 9101
	CodeInternal         = 9999
)

var (
	ErrMissingQuery           = errors.New("location query is required")
	ErrInvalidDays            = fmt.Errorf("days must be between 1 and %d", MaxForecastDays)
	ErrInvalidCoordinates     = errors.New("invalid coordinates")
	ErrUnsupportedLocation    = errors.New("location not supported by provider")
	ErrNoStationsFound        = errors.New("no observation stations found")
	ErrWeatherDataUnavailable = errors.New("weather data unavailable")
	ErrNetwork                = errors.New("network error")
	ErrTimeout                = errors.New("request timed out")
	ErrProxyRejected          = errors.New("path rejected")
	ErrUnknownProvider        = errors.New("unknown provider")
)

// ValidationError reports an upstream payload that does not match its schema.
type ValidationError struct {
	Schema   string `json:"schema"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Received string `json:"received"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: field %q expected %s, received %s", e.Schema, e.Field, e.Expected, e.Received)
}

// APIError is the typed error surfaced to callers.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Classify maps any error from the pipeline to an APIError with a stable code
// and an HTTP status.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		out := *apiErr
		if out.Status == 0 {
			out.Status = statusForProviderCode(out.Code)
		}
		return &out
	}

	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return &APIError{Code: CodeInvalidPayload, Message: vErr.Error(), Status: http.StatusBadGateway, Err: err}
	case errors.Is(err, ErrMissingQuery):
		return &APIError{Code: CodeMissingQuery, Message: "Please enter a location to search for.", Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, ErrInvalidDays):
		return &APIError{Code: CodeInvalidDays, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, ErrInvalidCoordinates):
		return &APIError{Code: CodeInvalidLocation, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, ErrUnsupportedLocation):
		return &APIError{Code: CodeLocationNotFound, Message: "Location not found. Please try another city name.", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrNoStationsFound):
		return &APIError{Code: CodeNoStations, Message: "No observation stations found for this location.", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrWeatherDataUnavailable):
		return &APIError{Code: CodeDataUnavailable, Message: "Weather data unavailable for this location.", Status: http.StatusServiceUnavailable, Err: err}
	case errors.Is(err, ErrProxyRejected):
		return &APIError{Code: CodeProxyRejected, Message: "Invalid path parameter", Status: http.StatusForbidden, Err: err}
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: CodeTimeout, Message: "Request timeout. Please try again.", Status: http.StatusGatewayTimeout, Err: err}
	case errors.Is(err, ErrNetwork):
		return &APIError{Code: CodeNetwork, Message: "Network error. Please try again.", Status: http.StatusBadGateway, Err: err}
	case errors.Is(err, ErrUnknownProvider):
		return &APIError{Code: CodeMissingQuery, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	default:
		return &APIError{Code: CodeInternal, Message: "Internal application error. Please try again later.", Status: http.StatusInternalServerError, Err: err}
	}
}

// statusForProviderCode maps commercial provider error codes to HTTP statuses.
func statusForProviderCode(code int) int {
	switch code {
	case CodeMissingQuery, 1005:
		return http.StatusBadRequest
	case CodeLocationNotFound:
		return http.StatusNotFound
	case 1002, 2006:
		return http.StatusUnauthorized
	case 2007, 2008, 2009:
		return http.StatusForbidden
	default:
		if code >= 500 && code < 600 {
			return code
		}
		return http.StatusBadGateway
	}
}

// Retryable reports whether err is eligible for the single retry: network
// failures, timeouts and upstream 5xx responses.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}
