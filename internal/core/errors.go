// Package core implements the TraceBuf2 packet codec and fingerprints.
package core

import "errors"

// Sentinel errors shared across the gateway.
var (
	// Codec errors
	ErrMessageTooShort     = errors.New("deduplicator: message shorter than tracebuf2 header")
	ErrMessageTooLong      = errors.New("deduplicator: message exceeds maximum tracebuf2 size")
	ErrUnsupportedDataType = errors.New("deduplicator: unsupported data type")

	// Field errors
	ErrInvalidSamplingRate = errors.New("deduplicator: sampling rate must be positive")
	ErrInvalidSampleCount  = errors.New("deduplicator: number of samples must be non-negative")
	ErrSamplingRateNotSet  = errors.New("deduplicator: sampling rate not set")
	ErrNoSamples           = errors.New("deduplicator: no samples in signal")

	// Transport control
	ErrTerminate    = errors.New("deduplicator: terminate flag received from ring")
	ErrNotConnected = errors.New("deduplicator: not connected to a ring")
)
