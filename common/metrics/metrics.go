package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics captures service-level counters for compression, conversion,
// downloads and the retention sweeper.
type Metrics interface {
	IncCompression(quality, status string)
	ObserveCompressionDuration(quality string, durationSeconds float64)
	AddBytesProcessed(original, compressed int64)
	IncDownload(status string)
	IncConversion(status string)
	IncSweepDeleted(kind string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncCompression(string, string)              {}
func (Noop) ObserveCompressionDuration(string, float64) {}
func (Noop) AddBytesProcessed(int64, int64)             {}
func (Noop) IncDownload(string)                         {}
func (Noop) IncConversion(string)                       {}
func (Noop) IncSweepDeleted(string)                     {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	compressions        *prometheus.CounterVec
	compressionDuration *prometheus.HistogramVec
	bytesOriginal       prometheus.Counter
	bytesCompressed     prometheus.Counter
	downloads           *prometheus.CounterVec
	conversions         *prometheus.CounterVec
	sweepDeleted        *prometheus.CounterVec
	once                sync.Once
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		compressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compressions_total",
			Help:      "Compression requests by quality profile and status",
		}, []string{"quality", "status"}),
		compressionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compression_duration_seconds",
			Help:      "Wall-clock duration of external tool runs by quality profile",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"quality"}),
		bytesOriginal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_original_total",
			Help:      "Total bytes accepted for compression",
		}),
		bytesCompressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_compressed_total",
			Help:      "Total bytes produced by successful compressions",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download requests by status",
		}, []string{"status"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Image conversion requests by status",
		}, []string{"status"}),
		sweepDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_deleted_total",
			Help:      "Items removed by the retention sweeper by kind",
		}, []string{"kind"}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(
			p.compressions,
			p.compressionDuration,
			p.bytesOriginal,
			p.bytesCompressed,
			p.downloads,
			p.conversions,
			p.sweepDeleted,
		)
	})
}

func (p *Prom) IncCompression(quality, status string) {
	p.compressions.WithLabelValues(quality, status).Inc()
}

func (p *Prom) ObserveCompressionDuration(quality string, durationSeconds float64) {
	p.compressionDuration.WithLabelValues(quality).Observe(durationSeconds)
}

func (p *Prom) AddBytesProcessed(original, compressed int64) {
	p.bytesOriginal.Add(float64(original))
	p.bytesCompressed.Add(float64(compressed))
}

func (p *Prom) IncDownload(status string) {
	p.downloads.WithLabelValues(status).Inc()
}

func (p *Prom) IncConversion(status string) {
	p.conversions.WithLabelValues(status).Inc()
}

func (p *Prom) IncSweepDeleted(kind string) {
	p.sweepDeleted.WithLabelValues(kind).Inc()
}

// Handler exposes the default registry for the /metrics route
func Handler() http.Handler {
	return promhttp.Handler()
}
