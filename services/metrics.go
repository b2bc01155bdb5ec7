package services

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	xpGainedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_xp_gained_total",
			Help: "Applied XP granted, by source type",
		},
		[]string{"source_type"},
	)

	levelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_level_ups_total",
			Help: "Level-up events emitted",
		},
	)

	badgesUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_badges_unlocked_total",
			Help: "Badges unlocked, by rarity",
		},
		[]string{"rarity"},
	)

	idempotentReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_idempotent_replays_total",
			Help: "XP gain requests answered from the event ledger",
		},
	)

	writeConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_write_conflicts_total",
			Help: "Optimistic write conflicts, including retried ones",
		},
	)
)

// InitMetrics registers the engine counters. Call once at startup.
func InitMetrics() {
	prometheus.MustRegister(
		xpGainedTotal,
		levelUpsTotal,
		badgesUnlockedTotal,
		idempotentReplaysTotal,
		writeConflictsTotal,
	)
	log.Println("Progression metrics registered")
}
