package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking dialogue flow.
type BookingMetrics struct {
	inboundTotal  *prometheus.CounterVec
	outboundTotal *prometheus.CounterVec
	turnsTotal    *prometheus.CounterVec
	turnLatency   prometheus.Histogram
	bookingsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbot",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks",
		}, []string{"event_type", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbot",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"status"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbot",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed dialogue turns",
		}, []string{"outcome"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dentalbot",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one dialogue turn end to end",
			Buckets:   prometheus.DefBuckets,
		}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalbot",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Booking confirmation outcomes",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.turnsTotal, m.turnLatency, m.bookingsTotal)
	return m
}

func (m *BookingMetrics) ObserveInbound(eventType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(eventType, status).Inc()
}

func (m *BookingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveTurn(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
	m.turnLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}
