package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	cases := []struct {
		name   string
		checks map[string]Pinger
		status int
		state  string
	}{
		{"all up", map[string]Pinger{"postgres": up, "redis": up}, http.StatusOK, "ready"},
		{"postgres down", map[string]Pinger{"postgres": down, "redis": up}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMetricsHandler(service.NewMetricsService(), tc.checks)
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			h.Ready(c)

			require.Equal(t, tc.status, rec.Code)
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.state, body.Status)
			assert.Len(t, body.Checks, 2)
		})
	}
}

func TestMetricsHandlerRootAndSummary(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Language Lab Running Now", rec.Body.String())

	rec = app.do(http.MethodGet, "/metrics/summary", "admin@lab.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"goroutines"`)

	rec = app.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
