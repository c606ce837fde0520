// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one service instance. Each instance has
// its own registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	forecastRequests *prometheus.CounterVec
	forecastDuration prometheus.Histogram
	weatherLookups   *prometheus.CounterVec
	staleResults     *prometheus.CounterVec
	wsClients        prometheus.Gauge
	pvPower          prometheus.Gauge
	essSOC           prometheus.Gauge
	siteTemperature  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		forecastRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_forecast_requests_total",
				Help: "Forecast model requests by outcome",
			},
			[]string{"energy_type", "outcome"},
		),
		forecastDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_forecast_duration_seconds",
				Help:    "Forecast model request latency",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		weatherLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_weather_lookups_total",
				Help: "City weather lookups by outcome",
			},
			[]string{"outcome"},
		),
		staleResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_stale_results_total",
				Help: "Request results dropped because a newer request owned the page",
			},
			[]string{"page"},
		),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_websocket_clients",
			Help: "Connected websocket clients",
		}),
		pvPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_pv_power_kw",
			Help: "Photovoltaic power read from the plant in kW",
		}),
		essSOC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ess_soc_percent",
			Help: "Battery state of charge in %",
		}),
		siteTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_site_temperature_celsius",
			Help: "Current air temperature at the plant site",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.forecastRequests,
		m.forecastDuration,
		m.weatherLookups,
		m.staleResults,
		m.wsClients,
		m.pvPower,
		m.essSOC,
		m.siteTemperature,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveForecast records one model call
func (m *Metrics) ObserveForecast(energyType string, ok bool, took time.Duration) {
	m.forecastRequests.WithLabelValues(energyType, outcome(ok)).Inc()
	m.forecastDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveWeatherLookup(ok bool) {
	m.weatherLookups.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) IncStale(page string) {
	m.staleResults.WithLabelValues(page).Inc()
}

func (m *Metrics) SetWebSocketClients(n int) {
	m.wsClients.Set(float64(n))
}

func (m *Metrics) SetPlant(pvKW, socPct float64) {
	m.pvPower.Set(pvKW)
	m.essSOC.Set(socPct)
}

func (m *Metrics) SetSiteTemperature(c float64) {
	m.siteTemperature.Set(c)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
