package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
)

var (
	// ErrSourceStatus is returned when the chart host answers with anything
	// other than 200.
	ErrSourceStatus = errors.New("chart source returned non-200 status")

	// ErrSourceUnavailable is returned when no response was received, or
	// when the circuit breaker is refusing requests.
	ErrSourceUnavailable = errors.New("chart source unavailable")
)

// Source fetches raw chart bytes.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SourceConfig configures an HTTPSource.
type SourceConfig struct {
	// Client performs the requests. Defaults to a client with no timeout:
	// a hung connection blocks the caller.
	Client *http.Client

	// BreakerFailures opens the circuit after this many consecutive failed
	// fetches. Zero disables the breaker.
	BreakerFailures uint32
}

// HTTPSource downloads charts with a single GET per call. It never retries.
type HTTPSource struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPSource creates an HTTPSource from cfg.
func NewHTTPSource(cfg SourceConfig) *HTTPSource {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	s := &HTTPSource{client: client}
	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "chart-source",
			MaxRequests: 1,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// 404 means the spot has no chart for that month, not that the
			// host is down.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrSourceStatus)
			},
		})
	}
	return s
}

// Fetch returns the body of a 200 response.
//
// # Errors
//
//   - ErrSourceStatus for any non-200 status
//   - ErrSourceUnavailable for transport failures and an open breaker
func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	if s.breaker == nil {
		return s.get(ctx, url)
	}

	body, err := s.breaker.Execute(func() (interface{}, error) {
		return s.get(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid chart url %q: %w", url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrSourceStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrSourceUnavailable, err)
	}
	return body, nil
}

// Exists sends a single HEAD request and reports whether url answered 200.
// Any other status is a plain false; it shares the breaker with Fetch.
//
// # Errors
//
//   - ErrSourceUnavailable for transport failures and an open breaker
func (s *HTTPSource) Exists(ctx context.Context, url string) (bool, error) {
	var err error
	if s.breaker == nil {
		err = s.head(ctx, url)
	} else {
		_, err = s.breaker.Execute(func() (interface{}, error) {
			return nil, s.head(ctx, url)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}
	if errors.Is(err, ErrSourceStatus) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *HTTPSource) head(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("invalid chart url %q: %w", url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrSourceStatus, resp.StatusCode)
	}
	return nil
}

// BreakerState reports the circuit state, or "disabled" without a breaker.
func (s *HTTPSource) BreakerState() string {
	if s.breaker == nil {
		return "disabled"
	}
	return s.breaker.State().String()
}
