// Package ring adapts the gateway to an Earthworm-style shared-memory
// transport. The native C binding stays behind the Transport interface;
// LocalTransport provides an in-process implementation of the same
// primitives over ShmRing.
package ring

// Logo identifies a message's installation, producing module, and type.
// Zero is the wildcard value for every field.
type Logo struct {
	Installation uint8
	Module       uint8
	Type         uint8
}

// Wildcard matches any value in a logo field.
const Wildcard uint8 = 0

// Matches reports whether a message logo passes this filter logo.
func (l Logo) Matches(msg Logo) bool {
	if l.Installation != Wildcard && l.Installation != msg.Installation {
		return false
	}
	if l.Module != Wildcard && l.Module != msg.Module {
		return false
	}
	if l.Type != Wildcard && l.Type != msg.Type {
		return false
	}
	return true
}

// ReadStatus is the per-copy result of a ring read, mirroring the
// transport library's GET_* codes.
type ReadStatus int

const (
	GetOK ReadStatus = iota
	GetNone
	GetMiss
	GetMissLapped
	GetMissSeqGap
	GetNoTrack
	GetTooBig
)

func (s ReadStatus) String() string {
	switch s {
	case GetOK:
		return "ok"
	case GetNone:
		return "none"
	case GetMiss:
		return "miss"
	case GetMissLapped:
		return "miss-lapped"
	case GetMissSeqGap:
		return "miss-seqgap"
	case GetNoTrack:
		return "no-track"
	case GetTooBig:
		return "too-big"
	}
	return "unknown"
}

// Symbolic names resolved during connect.
const (
	TypeTraceBuf2Name = "TYPE_TRACEBUF2"
	TypeHeartbeatName = "TYPE_HEARTBEAT"
	TypeErrorName     = "TYPE_ERROR"
	ModWildcardName   = "MOD_WILDCARD"
	InstWildcardName  = "INST_WILDCARD"
)

// Transport is the primitive surface of one ring attachment. One instance
// owns at most one attachment at a time.
type Transport interface {
	// GetKey resolves a ring name to its shared-memory key.
	GetKey(ringName string) (int64, error)
	// Attach binds to the ring identified by key.
	Attach(key int64) error
	// Detach releases the attachment. Safe to call when not attached.
	Detach() error
	// PutMessage writes one message under the given logo.
	PutMessage(logo Logo, msg []byte) error
	// CopyFrom copies the next pending message matching one of the filter
	// logos into buf, returning the copied length, the message's logo and
	// sequence number, and the read status. n is meaningful only for GetOK.
	CopyFrom(logos []Logo, buf []byte) (n int, logo Logo, seq uint8, status ReadStatus)
	// TerminateFlag reports whether the ring operator requested shutdown.
	TerminateFlag() bool
	// Symbolic identifier resolution.
	LookupType(name string) (uint8, error)
	LookupModule(name string) (uint8, error)
	LookupInstallation(name string) (uint8, error)
	LocalInstallation() (uint8, error)
}
