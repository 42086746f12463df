// Package gateway drives the drain → filter → republish loop.
package gateway

import (
	"sort"
	"strings"

	"github.com/uofuseismo/deduplicator/internal/log"
)

// Diagnostics accumulates the names of channels that produced bad data
// between flushes. Insertion is idempotent.
type Diagnostics struct {
	expired   map[string]struct{}
	future    map[string]struct{}
	duplicate map[string]struct{}
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		expired:   make(map[string]struct{}),
		future:    make(map[string]struct{}),
		duplicate: make(map[string]struct{}),
	}
}

func (d *Diagnostics) RecordExpired(name string)   { d.expired[name] = struct{}{} }
func (d *Diagnostics) RecordFuture(name string)    { d.future[name] = struct{}{} }
func (d *Diagnostics) RecordDuplicate(name string) { d.duplicate[name] = struct{}{} }

// Flush logs one line per non-empty set, then clears all three.
func (d *Diagnostics) Flush(logger log.Logger) {
	logSet(logger, "expired", d.expired)
	logSet(logger, "future", d.future)
	logSet(logger, "duplicate", d.duplicate)
	d.expired = make(map[string]struct{})
	d.future = make(map[string]struct{})
	d.duplicate = make(map[string]struct{})
}

func logSet(logger log.Logger, kind string, set map[string]struct{}) {
	if len(set) == 0 {
		return
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	logger.Infof("The following channels had %s data: %s",
		kind, strings.Join(names, " "))
}
