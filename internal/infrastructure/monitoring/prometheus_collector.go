package monitoring

import (
	"github.com/hansubae/Ghighlights/internal/core/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	viewersConnected prometheus.Gauge

	eventsBroadcastTotal prometheus.Counter
	sendFailuresTotal    prometheus.Counter
	viewsAcceptedTotal   prometheus.Counter
	viewsDuplicateTotal  prometheus.Counter
	viewsFailedTotal     prometheus.Counter

	// last sampled totals, used to convert in-process counters to deltas
	lastBroadcast int64
	lastFailures  int64
	lastAccepted  int64
	lastDuplicate int64
	lastFailed    int64
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		viewersConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ghighlights_viewers_connected",
			Help: "Number of currently connected realtime viewers",
		}),

		eventsBroadcastTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ghighlights_events_broadcast_total",
			Help: "Total number of events fanned out to viewers",
		}),

		sendFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ghighlights_broadcast_send_failures_total",
			Help: "Total number of broadcast sends that failed and dropped the channel",
		}),

		viewsAcceptedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ghighlights_views_accepted_total",
			Help: "Total number of view requests that incremented a counter",
		}),

		viewsDuplicateTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ghighlights_views_duplicate_total",
			Help: "Total number of view requests suppressed inside the window",
		}),

		viewsFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ghighlights_views_failed_total",
			Help: "Total number of view requests rejected on ledger errors",
		}),
	}
}

// Sample pulls the current totals out of the metrics service and advances
// the exported counters by the observed deltas.
func (p *PrometheusCollector) Sample(metrics *services.MetricsService) {
	p.viewersConnected.Set(float64(metrics.ViewersConnected()))

	if broadcast := metrics.EventsBroadcast(); broadcast > p.lastBroadcast {
		p.eventsBroadcastTotal.Add(float64(broadcast - p.lastBroadcast))
		p.lastBroadcast = broadcast
	}

	if failures := metrics.SendFailures(); failures > p.lastFailures {
		p.sendFailuresTotal.Add(float64(failures - p.lastFailures))
		p.lastFailures = failures
	}

	accepted, duplicate, failed := metrics.TotalsSnapshot()
	if accepted > p.lastAccepted {
		p.viewsAcceptedTotal.Add(float64(accepted - p.lastAccepted))
		p.lastAccepted = accepted
	}
	if duplicate > p.lastDuplicate {
		p.viewsDuplicateTotal.Add(float64(duplicate - p.lastDuplicate))
		p.lastDuplicate = duplicate
	}
	if failed > p.lastFailed {
		p.viewsFailedTotal.Add(float64(failed - p.lastFailed))
		p.lastFailed = failed
	}
}
