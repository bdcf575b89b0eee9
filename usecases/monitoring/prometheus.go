//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package monitoring exposes Prometheus metrics for the storage layer.
// All methods are nil-safe so call sites never need to check whether
// monitoring is enabled.
package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusMetrics struct {
	ObjectsOpened     *prometheus.CounterVec
	ObjectsCreated    *prometheus.CounterVec
	ObjectsClosed     *prometheus.CounterVec
	ReadBatches       *prometheus.CounterVec
	ReadRows          *prometheus.CounterVec
	WriteRows         *prometheus.CounterVec
	CloseDurations    *prometheus.HistogramVec
	BackendOpDuration *prometheus.HistogramVec
}

var (
	metrics     *PrometheusMetrics
	metricsOnce sync.Once
)

// GetMetrics returns the process-wide metrics, registered on the default
// registerer on first use.
func GetMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		metrics = newPrometheusMetrics(prometheus.DefaultRegisterer)
	})
	return metrics
}

func newPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		ObjectsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_objects_opened_total",
			Help: "Objects opened, by type tag and mode.",
		}, []string{"soma_type", "mode"}),
		ObjectsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_objects_created_total",
			Help: "Objects created, by type tag.",
		}, []string{"soma_type"}),
		ObjectsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_objects_closed_total",
			Help: "Objects closed, by type tag.",
		}, []string{"soma_type"}),
		ReadBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_read_batches_total",
			Help: "Record batches delivered by read iterators.",
		}, []string{"soma_type"}),
		ReadRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_read_rows_total",
			Help: "Rows delivered by read iterators.",
		}, []string{"soma_type"}),
		WriteRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "somadb_write_rows_total",
			Help: "Rows accepted by write operations.",
		}, []string{"soma_type"}),
		CloseDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "somadb_close_duration_seconds",
			Help:    "Duration of close, including the publish of pending writes.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"soma_type"}),
		BackendOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "somadb_backend_op_duration_seconds",
			Help:    "Duration of backend storage operations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"backend", "op"}),
	}
	reg.MustRegister(pm.ObjectsOpened, pm.ObjectsCreated, pm.ObjectsClosed,
		pm.ReadBatches, pm.ReadRows, pm.WriteRows,
		pm.CloseDurations, pm.BackendOpDuration)
	return pm
}

func (pm *PrometheusMetrics) ObjectOpened(somaType, mode string) {
	if pm == nil {
		return
	}
	pm.ObjectsOpened.WithLabelValues(somaType, mode).Inc()
}

func (pm *PrometheusMetrics) ObjectCreated(somaType string) {
	if pm == nil {
		return
	}
	pm.ObjectsCreated.WithLabelValues(somaType).Inc()
}

func (pm *PrometheusMetrics) ObjectClosed(somaType string, seconds float64) {
	if pm == nil {
		return
	}
	pm.ObjectsClosed.WithLabelValues(somaType).Inc()
	pm.CloseDurations.WithLabelValues(somaType).Observe(seconds)
}

func (pm *PrometheusMetrics) BatchRead(somaType string, rows int64) {
	if pm == nil {
		return
	}
	pm.ReadBatches.WithLabelValues(somaType).Inc()
	pm.ReadRows.WithLabelValues(somaType).Add(float64(rows))
}

func (pm *PrometheusMetrics) RowsWritten(somaType string, rows int64) {
	if pm == nil {
		return
	}
	pm.WriteRows.WithLabelValues(somaType).Add(float64(rows))
}

func (pm *PrometheusMetrics) ObserveBackendOp(backend, op string, seconds float64) {
	if pm == nil {
		return
	}
	pm.BackendOpDuration.WithLabelValues(backend, op).Observe(seconds)
}
