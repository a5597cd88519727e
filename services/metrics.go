// services/metrics.go
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRewardsDistributed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_rewards_distributed_total",
		Help: "Successful reward disbursements by reward type.",
	}, []string{"reward_type"})

	metricRewardUnitsDistributed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reward_base_units_distributed_total",
		Help: "Total DSX base units minted through the reward engine.",
	})

	metricBadgesAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_badges_awarded_total",
		Help: "Achievement badges attached via the profile service.",
	})

	metricCosmeticsMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_cosmetics_minted_total",
		Help: "Cosmetic items minted across all templates.",
	})

	metricActiveStakes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_cosmetic_active_stakes",
		Help: "Cosmetics currently escrowed in stake vaults.",
	})
)
