// Package geo resolves public IP addresses to a country name.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"blockwatch/internal/logging"
	"blockwatch/internal/metrics"
	"blockwatch/internal/models"
)

// Locator resolves an address to a location label. Implementations never
// fail: anything that goes wrong yields models.UnknownLocation.
type Locator interface {
	Locate(ctx context.Context, addr netip.Addr) string
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context, addr netip.Addr) string

func (f LocatorFunc) Locate(ctx context.Context, addr netip.Addr) string {
	return f(ctx, addr)
}

// Static always answers with the same label. Used when lookups are disabled.
type Static string

func (s Static) Locate(context.Context, netip.Addr) string {
	return string(s)
}

var (
	errRateLimited    = errors.New("lookup budget exhausted")
	errNoCountry      = errors.New("response has no country field")
	maxResponseBytes  = int64(64 << 10)
	defaultBreakerWin = time.Minute
)

// Options configures an HTTPLocator.
type Options struct {
	Endpoint        string        // Base URL, the address is appended as a path segment
	Timeout         time.Duration // Per-request timeout
	RatePerMinute   int           // 0 disables the limiter
	BreakerFailures uint32        // Consecutive failures that open the breaker
	BreakerTimeout  time.Duration // Open -> half-open delay
	Client          *http.Client  // Optional, overrides Timeout
}

// response is the subset of the ip-api.com payload we read. Providers that
// only return "country" work too.
type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Country string `json:"country"`
}

// HTTPLocator looks addresses up against an HTTP JSON provider.
type HTTPLocator struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[string]
}

// NewHTTPLocator creates a locator. The HTTP client is created once here and
// reused for every lookup.
func NewHTTPLocator(opts Options) *HTTPLocator {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), opts.RatePerMinute)
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	log := logging.WithComponent("geo")

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "geolocation",
		MaxRequests: 1,
		Interval:    defaultBreakerWin,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Running out of budget says nothing about the provider's health.
			return err == nil || errors.Is(err, errRateLimited)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
		},
	})

	return &HTTPLocator{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		client:   client,
		limiter:  limiter,
		cb:       cb,
	}
}

// Locate returns the country for addr, or models.UnknownLocation.
func (l *HTTPLocator) Locate(ctx context.Context, addr netip.Addr) string {
	country, err := l.cb.Execute(func() (string, error) {
		if l.limiter != nil && !l.limiter.Allow() {
			return "", errRateLimited
		}
		return l.fetch(ctx, addr)
	})
	if err != nil {
		metrics.GeoLookups.WithLabelValues(resultLabel(err)).Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("ip", addr.String()).Msg("geolocation lookup failed")
		return models.UnknownLocation
	}
	metrics.GeoLookups.WithLabelValues("success").Inc()
	return country
}

func (l *HTTPLocator) fetch(ctx context.Context, addr netip.Addr) (string, error) {
	url := l.endpoint + "/" + addr.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if r.Country == "" {
		if r.Message != "" {
			return "", fmt.Errorf("%w (%s: %s)", errNoCountry, r.Status, r.Message)
		}
		return "", errNoCountry
	}
	return r.Country, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	default:
		return "failure"
	}
}
