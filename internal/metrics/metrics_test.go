package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
)

func TestRecordFrame(t *testing.T) {
	m := New(prometheus.NewRegistry())
	angles := orbital.ComputeBodyAngles(10, orbital.DefaultTable(), orbital.Options{})
	m.RecordFrame("orrery", 10, 2*time.Millisecond, angles)
	m.RecordFrame("orrery", 10.5, 3*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("orrery")))
	assert.Equal(t, 10.5, testutil.ToFloat64(m.simulationTime))
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.orbitalAngle.WithLabelValues("earth")), 1e-12)

	m.DriverError()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.driverErrors))

	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsClients))
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordFrame("calib", 1, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `orrery_frames_rendered_total{renderer="calib"} 1`)
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
