package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func serve(t *testing.T, store Pinger, path string) *httptest.ResponseRecorder {
	t.Helper()

	logger := zerolog.Nop()
	srv := NewServer(store, 0, &logger)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, stubPinger{err: errStoreDown}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadyz(t *testing.T) {
	rec := serve(t, stubPinger{}, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, stubPinger{err: errStoreDown}, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), errStoreDown.Error())
}

func TestMetricsEndpoint(t *testing.T) {
	EvaluationUnitFailures.WithLabelValues(FailureWrite).Inc()
	EvaluationsWritten.WithLabelValues("Test").Add(3)

	rec := serve(t, stubPinger{}, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `catwalk_evaluation_unit_failures_total{reason="write"}`))
	assert.True(t, strings.Contains(body, `catwalk_evaluations_written_total{matrix_type="Test"}`))
}
