package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
)

type Collector struct {
	framesTotal    *prometheus.CounterVec
	frameDuration  *prometheus.HistogramVec
	driverErrors   prometheus.Counter
	simulationTime prometheus.Gauge
	orbitalAngle   *prometheus.GaugeVec
	wsClients      prometheus.Gauge
	gatherer       prometheus.Gatherer
}

// New registers the orrery metrics on reg. Passing a fresh prometheus.NewRegistry keeps
// tests independent of the global registry.
func New(reg *prometheus.Registry) *Collector {
	m := &Collector{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_frames_rendered_total",
				Help: "Frames rendered and written to the driver",
			},
			[]string{"renderer"},
		),
		frameDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orrery_frame_render_seconds",
				Help:    "Time spent computing angles, posing the scene and rendering one frame",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"renderer"},
		),
		driverErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_driver_write_errors_total",
			Help: "Frames the LED driver failed to accept",
		}),
		simulationTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_simulation_time_seconds",
			Help: "Elapsed simulation time of the last frame",
		}),
		orbitalAngle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orrery_body_orbital_angle_radians",
				Help: "Unwrapped orbital angle of each body at the last frame",
			},
			[]string{"body"},
		),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_ws_clients",
			Help: "Connected websocket frame clients",
		}),
		gatherer: reg,
	}

	reg.MustRegister(m.framesTotal, m.frameDuration, m.driverErrors, m.simulationTime, m.orbitalAngle, m.wsClients)
	return m
}

// RecordFrame is called once per rendered frame.
func (m *Collector) RecordFrame(renderer string, simT float64, duration time.Duration, angles map[string]orbital.Angles) {
	m.framesTotal.WithLabelValues(renderer).Inc()
	m.frameDuration.WithLabelValues(renderer).Observe(duration.Seconds())
	m.simulationTime.Set(simT)
	for name, a := range angles {
		m.orbitalAngle.WithLabelValues(name).Set(a.OrbitalRad)
	}
}

func (m *Collector) DriverError() { m.driverErrors.Inc() }

func (m *Collector) ClientConnected()    { m.wsClients.Inc() }
func (m *Collector) ClientDisconnected() { m.wsClients.Dec() }

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
