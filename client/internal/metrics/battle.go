package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry collects everything the client exports on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var EnemiesDefeated = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "abandoned_enemies_defeated_total",
	Help: "Enemies defeated by the local battle loop.",
}, []string{"enemy"})

var PlayerDeaths = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "abandoned_player_deaths_total",
	Help: "Player deaths, labelled by the enemy that landed the hit.",
}, []string{"enemy"})

var ExperienceGained = factory.NewCounter(prometheus.CounterOpts{
	Name: "abandoned_battle_experience_total",
	Help: "Experience credited locally from defeated enemies.",
})

var BattleCycles = factory.NewCounterVec(prometheus.CounterOpts{
	Name: "abandoned_battle_cycles_total",
	Help: "Executed cycles of the periodic battle processes.",
}, []string{"process"})

var BattleRunning = factory.NewGauge(prometheus.GaugeOpts{
	Name: "abandoned_battle_running",
	Help: "1 while the battle loops are active.",
})

var GatewayRequests = factory.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "abandoned_gateway_request_seconds",
	Help:    "Latency of game server calls by endpoint and outcome.",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint", "outcome"})

var FeedClients = factory.NewGauge(prometheus.GaugeOpts{
	Name: "abandoned_feed_clients",
	Help: "Connected presentation feed clients.",
})

var FeedDropped = factory.NewCounter(prometheus.CounterOpts{
	Name: "abandoned_feed_dropped_total",
	Help: "Feed messages dropped because a client buffer was full.",
})
