// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsDrained counts packets read off the input ring.
	PacketsDrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deduplicator_packets_drained_total",
		Help: "Total number of tracebuf2 packets drained from the input ring",
	})

	// PacketsPublished counts packets re-emitted on the output ring.
	PacketsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deduplicator_packets_published_total",
		Help: "Total number of packets published to the output ring",
	})

	// PacketsRejected counts dropped packets by rejection reason.
	PacketsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deduplicator_packets_rejected_total",
		Help: "Total number of packets dropped before publication",
	}, []string{"reason"})

	// ChannelsTracked gauges how many channels have a dedup window.
	ChannelsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deduplicator_channels_tracked",
		Help: "Number of channels with an active deduplication window",
	})

	// HeartbeatsEmitted counts heartbeats written to the output ring.
	HeartbeatsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deduplicator_heartbeats_emitted_total",
		Help: "Total number of heartbeat messages emitted",
	})
)

// Rejection reasons for PacketsRejected.
const (
	ReasonExpired     = "expired"
	ReasonFuture      = "future"
	ReasonDuplicate   = "duplicate"
	ReasonDecodeError = "decode_error"
)
