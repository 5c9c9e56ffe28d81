package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the service's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	Searches           prometheus.Counter
	SearchFailures     prometheus.Counter
	SubjectBrowses     prometheus.Counter
	Enrichments        prometheus.Counter
	EnrichmentFailures prometheus.Counter
	Submissions        prometheus.Counter
	Publications       prometheus.Counter
	Purchases          prometheus.Counter
	PurchaseVolume     prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_searches_total"})
	searchFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_search_failures_total"})
	subjectBrowses := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_subject_browses_total"})
	enrichments := prometheus.NewCounter(prometheus.CounterOpts{Name: "detail_enrichments_total"})
	enrichmentFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "detail_enrichment_failures_total"})
	submissions := prometheus.NewCounter(prometheus.CounterOpts{Name: "shelf_submissions_total"})
	publications := prometheus.NewCounter(prometheus.CounterOpts{Name: "shelf_publications_total"})
	purchases := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_purchases_total"})
	purchaseVolume := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_purchase_volume_dollars_total"})

	r.MustRegister(searches, searchFailures, subjectBrowses, enrichments, enrichmentFailures,
		submissions, publications, purchases, purchaseVolume)
	return &Registry{
		reg:                r,
		Searches:           searches,
		SearchFailures:     searchFailures,
		SubjectBrowses:     subjectBrowses,
		Enrichments:        enrichments,
		EnrichmentFailures: enrichmentFailures,
		Submissions:        submissions,
		Publications:       publications,
		Purchases:          purchases,
		PurchaseVolume:     purchaseVolume,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
