package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Chain(ok, RateLimitByIP(cfg))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows up to the burst then rejects", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do("203.0.113.1").Code)
		require.Equal(t, http.StatusOK, do("203.0.113.1").Code)

		rec := do("203.0.113.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("limits are per client", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do("203.0.113.2").Code)
	})

	t.Run("honours X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.3:1234"
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 203.0.113.3")

		require.Equal(t, "198.51.100.7", IPKeyExtractor(req))
	})
}
