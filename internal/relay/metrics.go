package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	relayConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "remote_support_relay_connections",
			Help: "Current number of websocket connections per channel.",
		},
		[]string{"channel"},
	)
	relayRooms = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "remote_support_relay_rooms",
			Help: "Current number of rooms per channel.",
		},
		[]string{"channel"},
	)
	relayDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_messages_delivered_total",
			Help: "Messages handed to connections, by channel and delivery class.",
		},
		[]string{"channel", "class"},
	)
	relayDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_volatile_dropped_total",
			Help: "Volatile messages dropped because the connection was saturated.",
		},
		[]string{"channel"},
	)
	relayMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_routing_misses_total",
			Help: "Routed events that found no room or no target.",
		},
		[]string{"channel"},
	)
	relayRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_rejected_total",
			Help: "Inbound events answered with an error.",
		},
		[]string{"channel"},
	)
	relayExpired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_rooms_expired_total",
			Help: "Rooms removed by the inactivity sweeper.",
		},
		[]string{"channel"},
	)
	relayOutboxHighWater = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_support_relay_outbox_high_water",
			Help:    "Largest reliable backlog a connection held, observed when it closes.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"channel"},
	)
	relayRemote = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_support_relay_remote_messages_total",
			Help: "Messages exchanged with other relay processes, by direction.",
		},
		[]string{"channel", "direction"},
	)
)

func init() {
	prometheus.MustRegister(
		relayConnections,
		relayRooms,
		relayDelivered,
		relayDropped,
		relayMisses,
		relayRejected,
		relayExpired,
		relayOutboxHighWater,
		relayRemote,
	)
}

func incConnections(ch Channel) {
	relayConnections.WithLabelValues(string(ch)).Inc()
}

func decConnections(ch Channel) {
	relayConnections.WithLabelValues(string(ch)).Dec()
}

func setRooms(ch Channel, count int) {
	relayRooms.WithLabelValues(string(ch)).Set(float64(count))
}

func addDelivered(ch Channel, class DeliveryClass, count int) {
	relayDelivered.WithLabelValues(string(ch), class.String()).Add(float64(count))
}

func incDropped(ch Channel) {
	relayDropped.WithLabelValues(string(ch)).Inc()
}

func incMisses(ch Channel) {
	relayMisses.WithLabelValues(string(ch)).Inc()
}

func incRejected(ch Channel) {
	relayRejected.WithLabelValues(string(ch)).Inc()
}

func addExpired(ch Channel, count int) {
	relayExpired.WithLabelValues(string(ch)).Add(float64(count))
}

func incRemote(ch Channel, direction string) {
	relayRemote.WithLabelValues(string(ch), direction).Inc()
}

func observeOutboxHighWater(ch Channel, highWater int) {
	relayOutboxHighWater.WithLabelValues(string(ch)).Observe(float64(highWater))
}
