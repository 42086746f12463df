package core

import (
	"math"

	"github.com/pkg/errors"
)

// Wire-format sizes from Earthworm's trace_buf.h. String maxima are one
// short of the on-wire field widths; the NUL terminator is not ours to keep.
const (
	MaxTraceBufSize    = 4096
	TraceBuf2HeaderLen = 64

	MaxStationLength  = 6
	MaxNetworkLength  = 8
	MaxChannelLength  = 3
	MaxLocationLength = 2
)

// Quality flags in the tracebuf2 header.
const (
	QualityAmplifierSaturated  = 0x01
	QualityDigitizerClipped    = 0x02
	QualitySpikesDetected      = 0x04
	QualityGlitchesDetected    = 0x08
	QualityMissingDataPresent  = 0x10
	QualityTelemetrySynchError = 0x20
	QualityFilterCharging      = 0x40
	QualityTimeTagQuestionable = 0x80
)

// TraceBuf2 is one tracebuf2 packet. The header fields are held decoded;
// the exact bytes read off the ring are retained for re-emission. The
// sample payload is never materialized.
type TraceBuf2 struct {
	raw    [MaxTraceBufSize]byte
	msgLen int

	network  string
	station  string
	channel  string
	location string
	version  string
	dataType DataType

	startTime    float64
	endTime      float64
	samplingRate float64
	pinNumber    int
	quality      int16
	nSamples     int

	haveRate bool
}

// DecodeTraceBuf2 unpacks the 64-byte header of a tracebuf2 message.
// Endianness of the numeric fields is self-described by the data type code
// at byte 57. The full message is retained verbatim; samples stay opaque.
func DecodeTraceBuf2(msg []byte) (TraceBuf2, error) {
	var tb TraceBuf2
	if len(msg) < TraceBuf2HeaderLen {
		return tb, errors.Wrapf(ErrMessageTooShort, "%d bytes", len(msg))
	}
	dataType, err := ParseDataType(string(msg[57:59]))
	if err != nil {
		return tb, err
	}
	if err := tb.SetRaw(msg); err != nil {
		return tb, err
	}
	tb.dataType = dataType
	tb.version = string(msg[55:57])

	tb.SetStation(cString(msg[32:39]))
	tb.SetNetwork(cString(msg[39:48]))
	tb.SetChannel(cString(msg[48:52]))
	tb.SetLocationCode(cString(msg[52:55]))

	order := dataType.ByteOrder()
	tb.SetPinNumber(int(int32(order.Uint32(msg[0:4]))))
	nSamples := int(int32(order.Uint32(msg[4:8])))
	if err := tb.SetNumberOfSamples(nSamples); err != nil {
		return tb, err
	}
	// The on-wire end time (bytes 16-23) is distrusted and recomputed.
	tb.SetStartTime(math.Float64frombits(order.Uint64(msg[8:16])))
	rate := math.Float64frombits(order.Uint64(msg[24:32]))
	if err := tb.SetSamplingRate(rate); err != nil {
		return tb, err
	}
	tb.SetQuality(int16(order.Uint16(msg[60:62])))
	return tb, nil
}

// cString reads a NUL-terminated string out of a fixed-width header field.
func cString(field []byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

func (t *TraceBuf2) updateEndTime() {
	t.endTime = t.startTime
	if t.nSamples > 0 && t.samplingRate > 0 {
		t.endTime = t.startTime + float64(t.nSamples-1)/t.samplingRate
	}
}

// SetRaw stores the exact message bytes for later re-emission, zero-padding
// the tail of the retained buffer.
func (t *TraceBuf2) SetRaw(msg []byte) error {
	if len(msg) > MaxTraceBufSize {
		return errors.Wrapf(ErrMessageTooLong, "%d bytes", len(msg))
	}
	copy(t.raw[:], msg)
	for i := len(msg); i < MaxTraceBufSize; i++ {
		t.raw[i] = 0
	}
	t.msgLen = len(msg)
	return nil
}

// Raw exposes the retained message buffer. Only the first MessageLength
// bytes are meaningful; the rest is zero padding.
func (t *TraceBuf2) Raw() []byte {
	return t.raw[:]
}

func (t *TraceBuf2) MessageLength() int {
	return t.msgLen
}

func (t *TraceBuf2) SetNetwork(network string) {
	t.network = truncate(network, MaxNetworkLength)
}

func (t *TraceBuf2) Network() string { return t.network }

func (t *TraceBuf2) SetStation(station string) {
	t.station = truncate(station, MaxStationLength)
}

func (t *TraceBuf2) Station() string { return t.station }

func (t *TraceBuf2) SetChannel(channel string) {
	t.channel = truncate(channel, MaxChannelLength)
}

func (t *TraceBuf2) Channel() string { return t.channel }

func (t *TraceBuf2) SetLocationCode(location string) {
	t.location = truncate(location, MaxLocationLength)
}

func (t *TraceBuf2) LocationCode() string { return t.location }

func (t *TraceBuf2) SetStartTime(startTime float64) {
	t.startTime = startTime
	t.updateEndTime()
}

// StartTime is the UTC time of the first sample in seconds from the epoch.
func (t *TraceBuf2) StartTime() float64 { return t.startTime }

// EndTime is the UTC time of the last sample. It requires a sampling rate
// and at least one sample.
func (t *TraceBuf2) EndTime() (float64, error) {
	if !t.HaveSamplingRate() {
		return 0, ErrSamplingRateNotSet
	}
	if t.nSamples < 1 {
		return 0, ErrNoSamples
	}
	return t.endTime, nil
}

func (t *TraceBuf2) SetSamplingRate(samplingRate float64) error {
	if samplingRate <= 0 {
		return errors.Wrapf(ErrInvalidSamplingRate, "%f", samplingRate)
	}
	t.samplingRate = samplingRate
	t.haveRate = true
	t.updateEndTime()
	return nil
}

// SamplingRate is the sampling rate in Hz.
func (t *TraceBuf2) SamplingRate() (float64, error) {
	if !t.HaveSamplingRate() {
		return 0, ErrSamplingRateNotSet
	}
	return t.samplingRate, nil
}

func (t *TraceBuf2) HaveSamplingRate() bool {
	return t.haveRate && t.samplingRate > 0
}

func (t *TraceBuf2) SetNumberOfSamples(nSamples int) error {
	if nSamples < 0 {
		return errors.Wrapf(ErrInvalidSampleCount, "%d", nSamples)
	}
	t.nSamples = nSamples
	t.updateEndTime()
	return nil
}

func (t *TraceBuf2) NumberOfSamples() int { return t.nSamples }

func (t *TraceBuf2) SetPinNumber(pinNumber int) { t.pinNumber = pinNumber }

func (t *TraceBuf2) PinNumber() int { return t.pinNumber }

func (t *TraceBuf2) SetQuality(quality int16) { t.quality = quality }

func (t *TraceBuf2) Quality() int16 { return t.quality }

// Version is the two-character header version tag, "20" by default.
func (t *TraceBuf2) Version() string {
	if t.version == "" {
		return "20"
	}
	return t.version
}

func (t *TraceBuf2) DataType() DataType { return t.dataType }

// Name is the canonical channel identifier NET.STA.CHA, suffixed with the
// location code when one is present.
func (t *TraceBuf2) Name() string {
	name := t.network + "." + t.station + "." + t.channel
	if t.location != "" {
		name = name + "." + t.location
	}
	return name
}

// Clear resets the packet to its post-construction state.
func (t *TraceBuf2) Clear() {
	*t = TraceBuf2{}
}
