package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrementAndExport(t *testing.T) {
	before := testutil.ToFloat64(Transitions.WithLabelValues("end", ResultOK))
	Transitions.WithLabelValues("end", ResultOK).Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(Transitions.WithLabelValues("end", ResultOK)), 1e-9)

	FocusModes.WithLabelValues("explore").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "leverlab_experiment_transitions_total"))
	assert.True(t, strings.Contains(body, "leverlab_focus_mode_total"))
}
