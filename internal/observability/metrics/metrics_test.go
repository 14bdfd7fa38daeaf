package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveInbound("message", "accepted")
	m.ObserveOutbound("sent")
	m.ObserveTurn("ok", 0.2)
	m.ObserveBooking("committed")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveInbound("message", "accepted")
	m.ObserveOutbound("sent")
	m.ObserveTurn("error", 0.1)
	m.ObserveBooking("slot_taken")
}
