// Package snapshot captures the call-site specialization state of a
// runtime so it can be written to disk, stored, or compared between runs.
// Snapshots are encoded as canonical CBOR.
package snapshot

import (
	"time"

	"github.com/chazu/arraycreate/vm"
)

// SiteRecord describes one call site.
type SiteRecord struct {
	Site        int      `cbor:"1,keyasint"`
	Level       string   `cbor:"2,keyasint"`
	Active      []string `cbor:"3,keyasint,omitempty"` // branch names, canonical order
	Last        string   `cbor:"4,keyasint"`
	Hits        uint64   `cbor:"5,keyasint"`
	Misses      uint64   `cbor:"6,keyasint"`
	Invocations uint64   `cbor:"7,keyasint"`
	Hot         bool     `cbor:"8,keyasint"`
}

// Totals mirrors vm.AllocationStats.
type Totals struct {
	Dense  uint64 `cbor:"1,keyasint"`
	Sparse uint64 `cbor:"2,keyasint"`
	Errors uint64 `cbor:"3,keyasint"`
}

// Snapshot is the state of every call site of a runtime at one moment.
type Snapshot struct {
	ContextID string       `cbor:"1,keyasint"`
	TakenAt   int64        `cbor:"2,keyasint"` // Unix nanoseconds
	Sites     []SiteRecord `cbor:"3,keyasint,omitempty"`
	Totals    Totals       `cbor:"4,keyasint"`
}

// Time returns TakenAt as a time.Time.
func (s *Snapshot) Time() time.Time {
	return time.Unix(0, s.TakenAt)
}

// Site returns the record for a call site, or nil.
func (s *Snapshot) Site(site int) *SiteRecord {
	for i := range s.Sites {
		if s.Sites[i].Site == site {
			return &s.Sites[i]
		}
	}
	return nil
}

// Take captures rt at time now. Sites are ordered by key.
func Take(rt *vm.Runtime, now time.Time) *Snapshot {
	alloc := rt.Context().Stats()
	snap := &Snapshot{
		ContextID: rt.Context().ID().String(),
		TakenAt:   now.UnixNano(),
		Totals:    Totals{Dense: alloc.Dense, Sparse: alloc.Sparse, Errors: alloc.Errors},
	}

	profiler := rt.Profiler()
	for _, site := range rt.CallSites().Sites() {
		state := rt.CallSites().Get(site)
		rec := SiteRecord{
			Site:        site,
			Level:       state.Level().String(),
			Last:        state.Hint().String(),
			Hits:        state.Hits(),
			Misses:      state.Misses(),
			Invocations: profiler.Invocations(site),
			Hot:         profiler.IsHot(site),
		}
		for _, b := range state.Active() {
			rec.Active = append(rec.Active, b.String())
		}
		snap.Sites = append(snap.Sites, rec)
	}
	return snap
}
