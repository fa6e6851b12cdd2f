package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRefresh(t *testing.T) {
	m := New()
	m.ObserveRefresh(20*time.Millisecond, 12, "")
	m.ObserveRefresh(5*time.Millisecond, 0, "transport")
	m.ObserveRefresh(5*time.Millisecond, 0, "transport")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshTotal.WithLabelValues("success", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshTotal.WithLabelValues("failure", "transport")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.RecordsLoaded), "failures keep the last loaded count")
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRefresh(time.Millisecond, 3, "")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_records_loaded 3")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
