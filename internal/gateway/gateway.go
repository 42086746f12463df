package gateway

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/uofuseismo/deduplicator/internal/core"
	"github.com/uofuseismo/deduplicator/internal/dedup"
	"github.com/uofuseismo/deduplicator/internal/log"
	"github.com/uofuseismo/deduplicator/internal/metrics"
	"github.com/uofuseismo/deduplicator/internal/ring"
)

// loopPeriod is the minimum iteration period. Draining faster than this
// hammers the shared-memory region for no benefit on an idle ring.
const loopPeriod = time.Second

// Options tunes the admission filters and scheduling intervals.
type Options struct {
	MaxPastTime            time.Duration
	MaxFutureTime          time.Duration
	HeartbeatInterval      time.Duration
	LogBadDataInterval     time.Duration
	LogBadDataEnabled      bool
	CircularBufferDuration time.Duration
}

// Gateway owns the dedup registry and the diagnostic sets, and pumps
// packets from the input ring to the output ring on a single goroutine.
type Gateway struct {
	input  *ring.WaveRing
	output *ring.WaveRing
	opts   Options

	registry *dedup.Registry
	diag     *Diagnostics

	now   func() time.Time
	sleep func(time.Duration)
}

func New(input, output *ring.WaveRing, opts Options) *Gateway {
	return &Gateway{
		input:    input,
		output:   output,
		opts:     opts,
		registry: dedup.NewRegistry(opts.CircularBufferDuration),
		diag:     NewDiagnostics(),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Registry exposes the dedup state for inspection.
func (g *Gateway) Registry() *dedup.Registry {
	return g.registry
}

// Run pumps the loop until the transport raises its terminate flag or ctx
// is cancelled. Both paths emit one terminating heartbeat and return nil;
// per-packet and per-batch failures never end the loop.
func (g *Gateway) Run(ctx context.Context) error {
	logger := log.GetLogger()
	lastHeartbeat := g.now()
	lastDiag := g.now()

loop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown requested; leaving loop...")
			break loop
		default:
		}

		loopStart := g.now()
		logger.Debug("Scraping ring...")
		packets, err := g.input.Drain()
		if err != nil {
			if errors.Is(err, core.ErrTerminate) {
				logger.Infof("Received terminate signal from ring: %v", err)
				break loop
			}
			logger.WithError(err).Error("Failed to scrape input ring")
			g.sleep(loopPeriod)
			continue
		}

		// Computing the current time after scraping the ring is
		// conservative: a zero-latency, one sample packet still passes
		// the future-data filter.
		now := g.now()
		nowSeconds := float64(now.UnixMicro()) * 1.e-6
		earliestTime := nowSeconds - g.opts.MaxPastTime.Seconds()
		latestTime := nowSeconds + g.opts.MaxFutureTime.Seconds()

		for i := range packets {
			traceBuf2 := &packets[i]
			metrics.PacketsDrained.Inc()
			traceHeader, err := core.NewTraceHeader(traceBuf2)
			if err != nil {
				logger.Error("Failed to unpack traceBuf2.  Skipping...")
				metrics.PacketsRejected.WithLabelValues(metrics.ReasonDecodeError).Inc()
				continue
			}
			if traceBuf2.StartTime() < earliestTime {
				logger.Debugf("%s's data has expired; skipping...", traceHeader.Name)
				g.diag.RecordExpired(traceHeader.Name)
				metrics.PacketsRejected.WithLabelValues(metrics.ReasonExpired).Inc()
				continue
			}
			endTime, err := traceBuf2.EndTime()
			if err != nil {
				logger.Error("Failed to unpack traceBuf2.  Skipping...")
				metrics.PacketsRejected.WithLabelValues(metrics.ReasonDecodeError).Inc()
				continue
			}
			if endTime > latestTime {
				logger.Debugf("%s's data is future data; skipping...", traceHeader.Name)
				g.diag.RecordFuture(traceHeader.Name)
				metrics.PacketsRejected.WithLabelValues(metrics.ReasonFuture).Inc()
				continue
			}
			if g.registry.Admit(traceHeader) == dedup.Duplicate {
				logger.Debugf("Detected duplicate for: %s", traceHeader.Name)
				g.diag.RecordDuplicate(traceHeader.Name)
				metrics.PacketsRejected.WithLabelValues(metrics.ReasonDuplicate).Inc()
				continue
			}
			if err := g.output.Publish(traceBuf2); err != nil {
				logger.Warnf("Failed to write %s to output ring.  Failed with: %v",
					traceHeader.Name, err)
				continue
			}
			metrics.PacketsPublished.Inc()
		}
		metrics.ChannelsTracked.Set(float64(g.registry.Channels()))

		if now.Sub(lastHeartbeat) > g.opts.HeartbeatInterval {
			if err := g.output.PublishHeartbeat(false); err != nil {
				logger.Errorf("%v", err)
			} else {
				metrics.HeartbeatsEmitted.Inc()
			}
			lastHeartbeat = now
		}

		if g.opts.LogBadDataEnabled && now.Sub(lastDiag) > g.opts.LogBadDataInterval {
			g.diag.Flush(logger)
			lastDiag = now
		}

		if elapsed := g.now().Sub(loopStart); elapsed < loopPeriod {
			g.sleep(loopPeriod - elapsed)
		}
	}

	if err := g.output.PublishHeartbeat(true); err != nil {
		logger.Errorf("%v", err)
	}
	return nil
}
