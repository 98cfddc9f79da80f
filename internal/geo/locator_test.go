package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwatch/internal/models"
)

var testAddr = netip.MustParseAddr("203.0.113.7")

func newTestLocator(t *testing.T, handler http.HandlerFunc, mutate ...func(*Options)) (*HTTPLocator, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	opts := Options{
		Endpoint:        srv.URL + "/json/",
		Timeout:         time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  time.Minute,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return NewHTTPLocator(opts), &calls
}

func TestLocate_Success(t *testing.T) {
	var gotPath string
	loc, _ := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"success","country":"Testland","countryCode":"TL"}`))
	})

	assert.Equal(t, "Testland", loc.Locate(context.Background(), testAddr))
	assert.Equal(t, "/json/203.0.113.7", gotPath)
}

func TestLocate_FailuresDegradeToUnknown(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		}},
		{"missing country", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
		}},
		{"empty country", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"country":""}`))
		}},
		{"not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>rate limited</html>`))
		}},
		{"wrong type", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"country":42}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, _ := newTestLocator(t, tt.handler)
			assert.Equal(t, models.UnknownLocation, loc.Locate(context.Background(), testAddr))
		})
	}
}

func TestLocate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	loc := NewHTTPLocator(Options{Endpoint: endpoint, Timeout: time.Second})
	assert.Equal(t, models.UnknownLocation, loc.Locate(context.Background(), testAddr))
}

func TestLocate_Timeout(t *testing.T) {
	loc, _ := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}, func(o *Options) { o.Timeout = 100 * time.Millisecond })

	start := time.Now()
	assert.Equal(t, models.UnknownLocation, loc.Locate(context.Background(), testAddr))
	assert.Less(t, time.Since(start), time.Second)
}

func TestLocate_BreakerOpensAfterFailures(t *testing.T) {
	loc, calls := newTestLocator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, func(o *Options) { o.BreakerFailures = 3 })

	for i := 0; i < 10; i++ {
		assert.Equal(t, models.UnknownLocation, loc.Locate(context.Background(), testAddr))
	}
	assert.EqualValues(t, 3, calls.Load(), "open breaker must stop calling the provider")
}

func TestLocate_RateLimited(t *testing.T) {
	loc, calls := newTestLocator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"country":"Testland"}`))
	}, func(o *Options) { o.RatePerMinute = 2 })

	assert.Equal(t, "Testland", loc.Locate(context.Background(), testAddr))
	assert.Equal(t, "Testland", loc.Locate(context.Background(), testAddr))
	assert.Equal(t, models.UnknownLocation, loc.Locate(context.Background(), testAddr))
	require.EqualValues(t, 2, calls.Load())

	// Running out of budget must not trip the breaker.
	for i := 0; i < 10; i++ {
		loc.Locate(context.Background(), testAddr)
	}
	assert.Equal(t, "closed", loc.cb.State().String())
}

func TestStaticAndFunc(t *testing.T) {
	assert.Equal(t, "Unknown", Static(models.UnknownLocation).Locate(context.Background(), testAddr))

	f := LocatorFunc(func(_ context.Context, a netip.Addr) string { return a.String() })
	assert.Equal(t, "203.0.113.7", f.Locate(context.Background(), testAddr))
}
