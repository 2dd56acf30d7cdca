package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/common"
	"github.com/i474232898/weather-history/internal/weather"
)

const maxErrorBody = 512

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

// statusError is returned for non-2xx responses.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status code %d", e.code)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.code, e.body)
}

// decodeError marks a response body that could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// requester performs single-shot GET requests guarded by a circuit breaker. There are no
// retries; a failure is terminal for the current fetch.
type requester struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func newRequester(name string, client *http.Client, threshold uint32) *requester {
	return &requester{client: client, circuit: newBreaker(name, threshold)}
}

// newBreaker trips after threshold consecutive failures (5 when zero). An unknown city is an
// answer, not a failure, and does not count.
func newBreaker(name string, threshold uint32) *gobreaker.CircuitBreaker {
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, weather.ErrCityNotFound)
		},
	})
}

// getJSON issues GET endpoint?values and decodes the JSON body into out. Failures are
// classified into the weather error taxonomy.
func (r *requester) getJSON(ctx context.Context, op, endpoint string, values url.Values, out any) error {
	if r.client == nil {
		return weather.NewError(weather.KindRequest, op, errNoHTTPClient)
	}

	u := endpoint
	if len(values) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		u = endpoint + sep + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.NewError(weather.KindRequest, op, err)
	}

	_, err = r.circuit.Execute(func() (interface{}, error) {
		resp, execErr := r.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, &decodeError{err: err}
		}
		return nil, nil
	})
	if err != nil {
		return classify(op, err)
	}
	return nil
}

// classify maps a transport failure onto an error kind.
func classify(op string, err error) error {
	var we *weather.Error
	if errors.As(err, &we) {
		return err
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return weather.NewError(weather.KindRequest, op, fmt.Errorf("%w: %v", errCircuitOpen, err))
	}

	var se *statusError
	if errors.As(err, &se) {
		e := weather.NewError(weather.KindHTTP, op, se)
		e.StatusCode = se.code
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return weather.NewError(weather.KindTimeout, op, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return weather.NewError(weather.KindTimeout, op, err)
	}

	var de *decodeError
	if errors.As(err, &de) {
		return weather.NewError(weather.KindRequest, op, err)
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return weather.NewError(weather.KindConnection, op, err)
	}
	if common.ContainsAnyFold(err.Error(), "connection refused", "connection reset", "no such host", "broken pipe") {
		return weather.NewError(weather.KindConnection, op, err)
	}

	return weather.NewError(weather.KindRequest, op, err)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
