package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"gem_market/pkg/metrics"
)

func TestPrometheusServer(t *testing.T) {
	rq := require.New(t)

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gem_market",
		Name:      "deals_initiated_total",
		Help:      "Deals created by checkout.",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	testCases := []struct {
		name       string
		endpoint   string
		statusCode int
		contains   string
	}{
		{
			name:       "Metrics handler",
			endpoint:   "/metrics",
			statusCode: http.StatusOK,
			contains:   "gem_market_deals_initiated_total 3",
		},
		{
			name:       "Invalid endpoint",
			endpoint:   "/invalid",
			statusCode: http.StatusNotFound,
		},
	}

	srv := httptest.NewServer(metrics.NewPrometheusServer(":0", reg).Handler())
	defer srv.Close()

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			resp, err := srv.Client().Get(srv.URL + tc.endpoint)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			rq.NoError(err)

			if tc.contains != "" {
				rq.Contains(string(body), tc.contains)
			}
		})
	}
}
