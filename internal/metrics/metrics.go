// Package metrics defines the Prometheus collectors for the analysis engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the samples_processed_total counter.
const (
	OutcomeOK          = "ok"
	OutcomeBlacklisted = "blacklisted"
	OutcomeError       = "error"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	SamplesProcessed *prometheus.CounterVec
	ArchivesExpanded prometheus.Counter
	MembersRecovered prometheus.Counter
	RecordsFiltered  prometheus.Counter
	URLsDropped      prometheus.Counter
	WhitelistReloads prometheus.Counter
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		SamplesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samples_processed_total",
				Help: "Total attachments processed, by outcome.",
			},
			[]string{"outcome"},
		),
		ArchivesExpanded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archives_expanded_total",
			Help: "Total archive samples expanded.",
		}),
		MembersRecovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "archive_members_total",
			Help: "Total files recovered from expanded archives.",
		}),
		RecordsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "records_filtered_total",
			Help: "Total records marked filtered by known-hash matching.",
		}),
		URLsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "urls_whitelisted_total",
			Help: "Total extracted URL domains dropped by the whitelist.",
		}),
		WhitelistReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whitelist_reloads_total",
			Help: "Total whitelist reloads performed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.SamplesProcessed,
		m.ArchivesExpanded,
		m.MembersRecovered,
		m.RecordsFiltered,
		m.URLsDropped,
		m.WhitelistReloads,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the exposition handler for a metrics-only listener.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
