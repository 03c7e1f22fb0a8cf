package probe_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gem_market/pkg/probe"
)

func TestServer(t *testing.T) {
	rq := require.New(t)

	okCheck := func(context.Context) error { return nil }
	downCheck := func(context.Context) error { return errors.New("connection refused") }

	testCases := []struct {
		name       string
		endpoint   string
		checks     map[string]probe.Check
		statusCode int
		body       string
	}{
		{
			name:       "Health handler",
			endpoint:   "/healthz",
			checks:     map[string]probe.Check{"postgres": downCheck},
			statusCode: http.StatusOK,
			body:       `{"name":"gem_market","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler",
			endpoint:   "/ready",
			checks:     map[string]probe.Check{"postgres": okCheck, "redis": okCheck},
			statusCode: http.StatusOK,
			body:       `{"name":"gem_market","version":"v0.0.1"}`,
		},
		{
			name:       "Ready handler with failed dependencies",
			endpoint:   "/ready",
			checks:     map[string]probe.Check{"redis": downCheck, "postgres": downCheck, "bot": okCheck},
			statusCode: http.StatusServiceUnavailable,
			body:       `{"name":"gem_market","version":"v0.0.1","failed":["postgres","redis"]}`,
		},
		{
			name:       "Invalid endpoint",
			endpoint:   "/invalid",
			statusCode: http.StatusNotFound,
			body:       "404 page not found\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			probeServer := probe.NewServer(":0", probe.Options{
				Name:    "gem_market",
				Version: "v0.0.1",
				Checks:  tc.checks,
			})

			srv := httptest.NewServer(probeServer.Handler())
			defer srv.Close()

			resp, err := srv.Client().Get(srv.URL + tc.endpoint)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			bodyBytes, err := io.ReadAll(resp.Body)
			rq.NoError(err)

			rq.Equal(tc.body, string(bodyBytes))
		})
	}
}
