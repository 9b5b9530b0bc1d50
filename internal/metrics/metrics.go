// Package metrics holds the prometheus collectors for catalog ingestion and
// deck mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourcesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deckbuilder",
		Name:      "catalog_sources_total",
		Help:      "Catalog sources processed, by faction and result.",
	}, []string{"faction", "result"})

	catalogCards = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "deckbuilder",
		Name:      "catalog_cards",
		Help:      "Cards in the loaded catalog.",
	})

	catalogFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deckbuilder",
		Name:      "catalog_fallbacks_total",
		Help:      "Times ingestion fell back to the built-in catalog.",
	})

	deckMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deckbuilder",
		Name:      "deck_mutations_total",
		Help:      "Deck mutation requests, by operation and outcome.",
	}, []string{"op", "outcome"})
)

// SourceLoaded records one catalog source outcome.
func SourceLoaded(faction string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	sourcesLoaded.WithLabelValues(faction, result).Inc()
}

// CatalogLoaded records the final catalog size and whether the fallback was used.
func CatalogLoaded(size int, fallback bool) {
	catalogCards.Set(float64(size))
	if fallback {
		catalogFallbacks.Inc()
	}
}

// DeckMutation records a mutation. outcome is "ok" or a rejection reason code.
func DeckMutation(op, outcome string) {
	deckMutations.WithLabelValues(op, outcome).Inc()
}
