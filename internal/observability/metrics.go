// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Round metrics
	RoundsSettled  prometheus.Counter
	RoundRewards   *prometheus.CounterVec
	RoundLosses    prometheus.Counter
	SlashingEvents prometheus.Counter
	GamesOver      prometheus.Counter
	Resets         prometheus.Counter
	RoundDuration  prometheus.Histogram

	// Operator metrics
	TasksGenerated prometheus.Counter
	TasksResolved  *prometheus.CounterVec
	OperatorTrust  prometheus.Gauge

	// Player metrics
	PlayerCapital   prometheus.Gauge
	TotalEarnings   prometheus.Gauge
	DepositsTotal   prometheus.Counter
	CommandErrors   *prometheus.CounterVec
	CurrentRound    prometheus.Gauge
	StakePerNetwork *prometheus.GaugeVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Transport metrics
	WSClients prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "symulator"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Round metrics
		RoundsSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "settled_total",
			Help:      "Total number of settled rounds",
		}),
		RoundRewards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "rewards_total",
			Help:      "Total positive reward credited by source",
		}, []string{"source"}),
		RoundLosses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "losses_total",
			Help:      "Total absolute value of negative round totals",
		}),
		SlashingEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "slashing_events_total",
			Help:      "Total number of slashing penalties applied",
		}),
		GamesOver: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "games_over_total",
			Help:      "Total number of sessions that ended in game over",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "resets_total",
			Help:      "Total number of session resets",
		}),
		RoundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "settle_duration_seconds",
			Help:      "Round settlement duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Operator metrics
		TasksGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "operator",
			Name:      "tasks_generated_total",
			Help:      "Total number of validation tasks generated",
		}),
		TasksResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "operator",
			Name:      "tasks_resolved_total",
			Help:      "Total number of accepted tasks resolved by outcome",
		}, []string{"outcome"}),
		OperatorTrust: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "operator",
			Name:      "trust_score",
			Help:      "Trust score of the player's operator",
		}),

		// Player metrics
		PlayerCapital: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "player",
			Name:      "capital",
			Help:      "Current player capital",
		}),
		TotalEarnings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "player",
			Name:      "total_earnings",
			Help:      "Cumulative earnings of the current session",
		}),
		DepositsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "player",
			Name:      "deposits_total",
			Help:      "Total number of accepted deposits",
		}),
		CommandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "player",
			Name:      "command_errors_total",
			Help:      "Total number of rejected commands by command and kind",
		}, []string{"command", "kind"}),
		CurrentRound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "player",
			Name:      "current_round",
			Help:      "Current unsettled round number",
		}),
		StakePerNetwork: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "current_stake",
			Help:      "Stake delegated to each network after the last round",
		}, []string{"network"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Transport metrics
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RoundStats is the subset of a settled round that metrics observe.
type RoundStats struct {
	VaultRewards   float64
	TaskRewards    float64
	TotalReward    float64
	Slashes        int
	TasksGenerated int
	TasksSucceeded int
	TasksFailed    int
	Capital        float64
	TotalEarnings  float64
	NextRound      int
	OperatorTrust  *float64
	GameOver       bool
	Stakes         map[string]float64
	Seconds        float64
}

// ObserveRound records one settled round on m.
func (m *Metrics) ObserveRound(s RoundStats) {
	m.RoundsSettled.Inc()
	m.RoundDuration.Observe(s.Seconds)
	if s.VaultRewards > 0 {
		m.RoundRewards.WithLabelValues("vault").Add(s.VaultRewards)
	}
	if s.TaskRewards > 0 {
		m.RoundRewards.WithLabelValues("task").Add(s.TaskRewards)
	}
	if s.TotalReward < 0 {
		m.RoundLosses.Add(-s.TotalReward)
	}
	m.SlashingEvents.Add(float64(s.Slashes))
	m.TasksGenerated.Add(float64(s.TasksGenerated))
	m.TasksResolved.WithLabelValues("succeeded").Add(float64(s.TasksSucceeded))
	m.TasksResolved.WithLabelValues("failed").Add(float64(s.TasksFailed))
	m.PlayerCapital.Set(s.Capital)
	m.TotalEarnings.Set(s.TotalEarnings)
	m.CurrentRound.Set(float64(s.NextRound))
	if s.OperatorTrust != nil {
		m.OperatorTrust.Set(*s.OperatorTrust)
	}
	for network, stake := range s.Stakes {
		m.StakePerNetwork.WithLabelValues(network).Set(stake)
	}
	if s.GameOver {
		m.GamesOver.Inc()
	}
}

// RecordRound records a settled round on the default metrics.
func RecordRound(s RoundStats) {
	DefaultMetrics.ObserveRound(s)
}

// RecordDeposit records an accepted deposit and the capital left after it.
func RecordDeposit(capitalAfter float64) {
	DefaultMetrics.DepositsTotal.Inc()
	DefaultMetrics.PlayerCapital.Set(capitalAfter)
}

// RecordCommandError records a rejected command.
func RecordCommandError(command, kind string) {
	DefaultMetrics.CommandErrors.WithLabelValues(command, kind).Inc()
}

// RecordReset records a session reset.
func RecordReset(capital float64) {
	DefaultMetrics.Resets.Inc()
	DefaultMetrics.PlayerCapital.Set(capital)
	DefaultMetrics.TotalEarnings.Set(0)
	DefaultMetrics.CurrentRound.Set(1)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// SetWSClients updates the connected websocket client gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}
