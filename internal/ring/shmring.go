package ring

import (
	"sync"

	"github.com/pkg/errors"
)

// ShmRing is an in-process rendition of a shared-memory message ring: a
// bounded slot buffer with wrapping sequence numbers, lap detection for
// slow readers, and a terminate flag. It backs LocalTransport attachments
// and the package tests.
type ShmRing struct {
	mu        sync.Mutex
	name      string
	slots     []shmMessage
	total     uint64 // messages ever written
	nextSeq   uint8
	terminate bool
}

type shmMessage struct {
	logo Logo
	seq  uint8
	data []byte
}

const defaultShmSlots = 4096

// NewShmRing creates a standalone ring holding up to capacity messages.
func NewShmRing(name string, capacity int) *ShmRing {
	if capacity < 1 {
		capacity = defaultShmSlots
	}
	return &ShmRing{
		name:  name,
		slots: make([]shmMessage, 0, capacity),
	}
}

// Name returns the ring's name.
func (r *ShmRing) Name() string {
	return r.name
}

// SetTerminate raises or clears the operator shutdown flag.
func (r *ShmRing) SetTerminate(v bool) {
	r.mu.Lock()
	r.terminate = v
	r.mu.Unlock()
}

func (r *ShmRing) terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminate
}

func (r *ShmRing) put(logo Logo, msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := shmMessage{
		logo: logo,
		seq:  r.nextSeq,
		data: append([]byte(nil), msg...),
	}
	r.nextSeq++
	if len(r.slots) < cap(r.slots) {
		r.slots = append(r.slots, m)
	} else {
		copy(r.slots, r.slots[1:])
		r.slots[len(r.slots)-1] = m
	}
	r.total++
}

// oldest returns the absolute index of the oldest retained message.
func (r *ShmRing) oldest() uint64 {
	return r.total - uint64(len(r.slots))
}

// readFrom copies the next message at or after cursor that passes the
// filters. It returns the new cursor alongside the copy result.
func (r *ShmRing) readFrom(cursor uint64, logos []Logo, buf []byte) (next uint64, n int, logo Logo, seq uint8, status ReadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cursor < r.oldest() {
		// The writer lapped this reader; everything before is gone.
		return r.oldest(), 0, Logo{}, 0, GetMissLapped
	}
	for cursor < r.total {
		m := r.slots[cursor-r.oldest()]
		cursor++
		if !anyMatches(logos, m.logo) {
			continue
		}
		if len(m.data) > len(buf) {
			return cursor, 0, m.logo, m.seq, GetTooBig
		}
		copy(buf, m.data)
		return cursor, len(m.data), m.logo, m.seq, GetOK
	}
	return cursor, 0, Logo{}, 0, GetNone
}

func anyMatches(logos []Logo, msg Logo) bool {
	for _, l := range logos {
		if l.Matches(msg) {
			return true
		}
	}
	return false
}

// localRings is the process-wide table standing in for the shared-memory
// segment namespace. Keys are handed out in ring creation order.
var (
	localMu    sync.Mutex
	localRings []*ShmRing
	localNames = map[string]int64{}
)

// LocalRing finds or creates the named process-local ring. Tests use it to
// feed a transport from the outside.
func LocalRing(name string) *ShmRing {
	localMu.Lock()
	defer localMu.Unlock()
	if key, ok := localNames[name]; ok {
		return localRings[key]
	}
	r := NewShmRing(name, defaultShmSlots)
	localNames[name] = int64(len(localRings))
	localRings = append(localRings, r)
	return r
}

func localRingByKey(key int64) (*ShmRing, bool) {
	localMu.Lock()
	defer localMu.Unlock()
	if key < 0 || key >= int64(len(localRings)) {
		return nil, false
	}
	return localRings[key], true
}

// Symbolic identifier tables. The well-known ids mirror a stock
// earthworm.d; module names are registered on first lookup the way an
// installation registers them in its configuration.
var (
	symbolMu sync.Mutex
	typeIDs  = map[string]uint8{
		TypeErrorName:     2,
		TypeHeartbeatName: 3,
		TypeTraceBuf2Name: 19,
	}
	moduleIDs = map[string]uint8{
		ModWildcardName: 0,
	}
	installationIDs = map[string]uint8{
		InstWildcardName: 0,
	}
	nextModuleID uint8 = 1
)

const localInstallationID uint8 = 255

var _ Transport = (*LocalTransport)(nil)

// LocalTransport implements Transport over the process-local ring table.
type LocalTransport struct {
	ringName string
	ring     *ShmRing
	cursor   uint64
}

// NewLocalTransport returns an unattached transport for the named ring.
// The name is advisory; GetKey resolves whatever name the caller passes.
func NewLocalTransport(name string) *LocalTransport {
	return &LocalTransport{ringName: name}
}

func (t *LocalTransport) GetKey(ringName string) (int64, error) {
	LocalRing(ringName)
	localMu.Lock()
	defer localMu.Unlock()
	key, ok := localNames[ringName]
	if !ok {
		return -1, errors.Errorf("no ring named %s", ringName)
	}
	return key, nil
}

func (t *LocalTransport) Attach(key int64) error {
	r, ok := localRingByKey(key)
	if !ok {
		return errors.Errorf("no ring for key %d", key)
	}
	t.ring = r
	r.mu.Lock()
	t.cursor = r.oldest()
	r.mu.Unlock()
	return nil
}

func (t *LocalTransport) Detach() error {
	t.ring = nil
	t.cursor = 0
	return nil
}

func (t *LocalTransport) PutMessage(logo Logo, msg []byte) error {
	if t.ring == nil {
		return errors.Errorf("not attached")
	}
	t.ring.put(logo, msg)
	return nil
}

func (t *LocalTransport) CopyFrom(logos []Logo, buf []byte) (int, Logo, uint8, ReadStatus) {
	if t.ring == nil {
		return 0, Logo{}, 0, GetNone
	}
	next, n, logo, seq, status := t.ring.readFrom(t.cursor, logos, buf)
	t.cursor = next
	return n, logo, seq, status
}

func (t *LocalTransport) TerminateFlag() bool {
	if t.ring == nil {
		return false
	}
	return t.ring.terminated()
}

func (t *LocalTransport) LookupType(name string) (uint8, error) {
	symbolMu.Lock()
	defer symbolMu.Unlock()
	id, ok := typeIDs[name]
	if !ok {
		return 0, errors.Errorf("unknown message type %s", name)
	}
	return id, nil
}

func (t *LocalTransport) LookupModule(name string) (uint8, error) {
	symbolMu.Lock()
	defer symbolMu.Unlock()
	if id, ok := moduleIDs[name]; ok {
		return id, nil
	}
	id := nextModuleID
	nextModuleID++
	moduleIDs[name] = id
	return id, nil
}

func (t *LocalTransport) LookupInstallation(name string) (uint8, error) {
	symbolMu.Lock()
	defer symbolMu.Unlock()
	id, ok := installationIDs[name]
	if !ok {
		return 0, errors.Errorf("unknown installation %s", name)
	}
	return id, nil
}

func (t *LocalTransport) LocalInstallation() (uint8, error) {
	return localInstallationID, nil
}
