package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrServerError      = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("circuit breaker open")

	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody bounds how much of an error response body is kept in error messages.
const maxErrorBody = 256

// outcome carries a response through the circuit breaker. Client errors (4xx)
// travel in err so that they do not count as breaker failures.
type outcome struct {
	body []byte
	err  error
}

// newCircuitBreaker opens after threshold consecutive transport or 5xx failures.
// A threshold <= 0 disables tripping.
func newCircuitBreaker(name string, threshold int) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= uint32(threshold)
		},
	})
}

// doRequest executes req once through the circuit breaker and returns the body
// of a 2xx response. There are no retries: a failed request is reported to the
// caller, which decides whether to skip or abort.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) ([]byte, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		statusErr := classifyStatus(resp.StatusCode, body)
		if errors.Is(statusErr, ErrServerError) {
			return nil, statusErr
		}
		return outcome{body: body, err: statusErr}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	out, ok := result.(outcome)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	if out.err != nil {
		return nil, out.err
	}
	return out.body, nil
}

// classifyStatus maps a response status to nil or one of the sentinel errors.
func classifyStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %d %s", ErrRateLimited, code, excerpt(body))
	case code >= 500:
		return fmt.Errorf("%w: %d %s", ErrServerError, code, excerpt(body))
	default:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, code, excerpt(body))
	}
}

func excerpt(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
