package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps upstream response bodies.
const maxBodySize = 4 << 20

// HTTPClientConfig bundles the HTTP client and per-call timeout.
type HTTPClientConfig struct {
	Client  *http.Client
	Timeout time.Duration
}

func (c HTTPClientConfig) withDefaults() HTTPClientConfig {
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

var errCircuitOpen = errors.New("circuit breaker open")

// upstreamStatusError carries a non-2xx response so each provider can map its
// own error vocabulary.
type upstreamStatusError struct {
	Status int
	Body   []byte
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// newBreaker builds a circuit breaker that only counts transport failures and
// 5xx responses; a 4xx is the caller's problem, not the provider's.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *upstreamStatusError
			return errors.As(err, &statusErr) && statusErr.Status < 500
		},
	})
}

// doRequest executes one GET through the circuit breaker with the configured
// timeout and returns the body of a 2xx response. Retries are the caller's
// business.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	provider, endpoint string,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &upstreamStatusError{Status: resp.StatusCode, Body: body}
		}
		return body, nil
	})
	metrics.ProviderLatency.WithLabelValues(provider, endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) {
			metrics.ProviderRequestsTotal.WithLabelValues(provider, endpoint, strconv.Itoa(statusErr.Status)).Inc()
			return nil, err
		}
		metrics.ProviderRequestsTotal.WithLabelValues(provider, endpoint, "error").Inc()
		return nil, classifyTransportError(ctx, err)
	}
	metrics.ProviderRequestsTotal.WithLabelValues(provider, endpoint, "200").Inc()

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// classifyTransportError maps transport failures onto the timeout and network
// error kinds.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", weather.ErrNetwork, errCircuitOpen)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", weather.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", weather.ErrNetwork, err)
}

// statusError is the fallback mapping for upstream statuses a provider does
// not interpret itself.
func statusError(provider string, e *upstreamStatusError) *weather.APIError {
	status := e.Status
	if status >= 500 {
		status = http.StatusBadGateway
	}
	return &weather.APIError{
		Code:    weather.CodeInternal,
		Message: fmt.Sprintf("%s returned status %d", provider, e.Status),
		Status:  status,
		Err:     e,
	}
}
