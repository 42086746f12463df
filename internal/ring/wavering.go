package ring

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/uofuseismo/deduplicator/internal/core"
	"github.com/uofuseismo/deduplicator/internal/log"
)

// WaveRing is the gateway's client for one wave ring: it resolves the
// symbolic identifiers at connect time, drains tracebuf2 messages in bulk,
// and republishes packets and heartbeats.
type WaveRing struct {
	transport Transport
	ringName  string
	connected bool

	logos []Logo

	installationID       uint8
	installationWildcard uint8
	moduleID             uint8
	moduleWildcard       uint8
	heartbeatType        uint8
	traceBuf2Type        uint8
	errorType            uint8

	mostWavesRead int
	pid           int

	now func() time.Time
}

// NewWaveRing wraps a transport attachment.
func NewWaveRing(transport Transport) *WaveRing {
	return &WaveRing{
		transport: transport,
		now:       time.Now,
	}
}

// Connect attaches to the named ring and resolves the installation, module
// and message-type identifiers. An empty moduleName resolves to the module
// wildcard.
func (w *WaveRing) Connect(ringName, moduleName string) error {
	if ringName == "" {
		return errors.New("ringName is empty")
	}
	w.Disconnect()
	logger := log.GetLogger()

	logger.Debugf("Getting key from ring: %s", ringName)
	key, err := w.transport.GetKey(ringName)
	if err != nil {
		return errors.Wrapf(err, "failed to get key for ring: %s", ringName)
	}
	logger.Debugf("Attaching to ring: %s", ringName)
	if err := w.transport.Attach(key); err != nil {
		return errors.Wrapf(err, "failed to attach to ring: %s", ringName)
	}

	logger.Debug("Specifying logos...")
	if w.installationID, err = w.transport.LocalInstallation(); err != nil {
		return errors.Wrap(err, "failed to get installation identifier")
	}
	if w.traceBuf2Type, err = w.transport.LookupType(TypeTraceBuf2Name); err != nil {
		return errors.Wrap(err, "failed to get tracebuf2 type")
	}
	if w.heartbeatType, err = w.transport.LookupType(TypeHeartbeatName); err != nil {
		return errors.Wrap(err, "failed to get heartbeat type")
	}
	if w.errorType, err = w.transport.LookupType(TypeErrorName); err != nil {
		return errors.Wrap(err, "failed to get error type")
	}
	if w.installationWildcard, err = w.transport.LookupInstallation(InstWildcardName); err != nil {
		return errors.Wrap(err, "failed to get installation wildcard")
	}
	if w.moduleWildcard, err = w.transport.LookupModule(ModWildcardName); err != nil {
		return errors.Wrap(err, "failed to get wildcard module ID")
	}
	if moduleName != "" {
		if w.moduleID, err = w.transport.LookupModule(moduleName); err != nil {
			return errors.Wrap(err, "failed to get module identifier")
		}
		logger.Infof("Got module ID: %d", w.moduleID)
	} else {
		w.moduleID = w.moduleWildcard
	}

	w.logos = []Logo{{Type: w.traceBuf2Type}}
	w.ringName = ringName
	w.pid = os.Getpid()
	w.connected = true
	logger.Infof("Connected to %s!", ringName)
	return nil
}

// IsConnected reports whether Connect has succeeded without a Disconnect.
func (w *WaveRing) IsConnected() bool {
	return w.connected
}

// Disconnect releases the ring attachment. Safe to call repeatedly and on
// every exit path.
func (w *WaveRing) Disconnect() {
	if w.connected {
		log.GetLogger().Info("Disconnecting from ring...")
		_ = w.transport.Detach()
	}
	w.logos = nil
	w.ringName = ""
	w.installationID = 0
	w.installationWildcard = 0
	w.moduleID = 0
	w.moduleWildcard = 0
	w.heartbeatType = 0
	w.traceBuf2Type = 0
	w.errorType = 0
	w.mostWavesRead = 0
	w.connected = false
}

// Drain reads every message currently pending on the ring in one pass,
// decoding tracebuf2 messages into packets. Partial transport errors are
// logged and skipped; the terminate flag aborts the drain, detaches, and
// surfaces core.ErrTerminate.
func (w *WaveRing) Drain() ([]core.TraceBuf2, error) {
	if !w.IsConnected() {
		return nil, core.ErrNotConnected
	}
	logger := log.GetLogger()
	reserve := w.mostWavesRead
	if reserve < 1024 {
		reserve = 1024
	}
	packets := make([]core.TraceBuf2, 0, reserve)
	var msg [core.MaxTraceBufSize]byte
	for {
		if w.transport.TerminateFlag() {
			logger.Errorf("Receiving kill signal from ring: %s; disconnecting from ring...",
				w.ringName)
			ringName := w.ringName
			w.Disconnect()
			return packets, errors.Wrapf(core.ErrTerminate, "ring %s", ringName)
		}
		n, logo, _, status := w.transport.CopyFrom(w.logos, msg[:])
		if status == GetNone {
			break
		}
		if status != GetOK {
			switch status {
			case GetMiss:
				logger.Warn("Some messages were missed")
			case GetNoTrack:
				logger.Warn("Message exceeded NTRACK_GET")
			case GetTooBig:
				logger.Warn("TraceBuf2 message too big")
			case GetMissLapped:
				logger.Warn("Some messages were overwritten")
			case GetMissSeqGap:
				logger.Warn("A gap in messages was detected")
			default:
				logger.Warnf("Unknown transport error: %v", status)
			}
			continue
		}
		if logo.Type != w.traceBuf2Type {
			logger.Error("Unhandled message type")
			continue
		}
		tb, err := core.DecodeTraceBuf2(msg[:n])
		if err != nil {
			logger.WithError(err).Error("Failed to unpack traceBuf2.  Skipping...")
			continue
		}
		if tb.NumberOfSamples() == 0 {
			continue
		}
		packets = append(packets, tb)
	}
	if len(packets) > w.mostWavesRead {
		w.mostWavesRead = len(packets)
	}
	return packets, nil
}

// Flush drains and discards everything pending on the ring.
func (w *WaveRing) Flush() error {
	if !w.IsConnected() {
		return core.ErrNotConnected
	}
	logger := log.GetLogger()
	logger.Debug("Flushing ring...")
	var msg [core.MaxTraceBufSize]byte
	nMessages := 0
	for {
		_, _, _, status := w.transport.CopyFrom(w.logos, msg[:])
		if status == GetNone {
			break
		}
		nMessages++
	}
	logger.Debugf("Flushed %d", nMessages)
	return nil
}

// Publish re-emits a packet's retained bytes under the tracebuf2 logo.
func (w *WaveRing) Publish(tb *core.TraceBuf2) error {
	if !w.IsConnected() {
		return core.ErrNotConnected
	}
	logo := Logo{
		Installation: w.installationID,
		Module:       w.moduleID,
		Type:         w.traceBuf2Type,
	}
	if err := w.transport.PutMessage(logo, tb.Raw()[:tb.MessageLength()]); err != nil {
		return errors.Wrapf(err, "failed to put %s onto ring", tb.Name())
	}
	return nil
}

// PublishHeartbeat emits a status message of the form "<secs> <pid>\n", or
// "<secs> -1 Terminating!\n" when the gateway is shutting down.
func (w *WaveRing) PublishHeartbeat(terminating bool) error {
	if !w.IsConnected() {
		return core.ErrNotConnected
	}
	nowSeconds := w.now().Unix()
	var message string
	if !terminating {
		message = fmt.Sprintf("%d %d\n", nowSeconds, w.pid)
	} else {
		message = fmt.Sprintf("%d -1 Terminating!\n", nowSeconds)
	}
	logo := Logo{
		Installation: w.installationID,
		Module:       w.moduleID,
		Type:         w.heartbeatType,
	}
	log.GetLogger().Debugf("Writing status message: %s", message)
	if err := w.transport.PutMessage(logo, []byte(message)); err != nil {
		return errors.Wrap(err, "failed to write heartbeat to ring")
	}
	return nil
}
