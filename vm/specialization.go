package vm

import (
	"math/bits"
	"sort"
	"sync"
	"sync/atomic"
)

// Call-site specialization for guarded operations.
//
// A guarded operation has a fixed set of mutually exclusive branches, each
// gated by a guard. Each call site remembers which branches it has taken
// (the active set) and which one it took last. The last branch is a hint:
// its guard is evaluated first on the next invocation, and if it fails the
// operation falls back to evaluating every guard in canonical order.
//
// Nothing here decides an outcome. Guards are always re-evaluated, so a
// stale or racy hint costs a few extra comparisons and never changes a
// result. Updates are lock-free with last-writer-wins on the hint.

// Branch identifies one specialization of a guarded operation.
type Branch uint8

const (
	BranchNone    Branch = iota // No branch taken yet
	BranchInvalid               // Guard: length is not a valid array length
	BranchDense                 // Guard: valid and length <= SmallThreshold
	BranchSparse                // Guard: valid and length > SmallThreshold
)

// NumBranches is the number of real branches (excluding BranchNone).
const NumBranches = 3

func (b Branch) String() string {
	switch b {
	case BranchInvalid:
		return "invalid"
	case BranchDense:
		return "dense"
	case BranchSparse:
		return "sparse"
	}
	return "none"
}

func (b Branch) bit() uint32 {
	if b == BranchNone {
		return 0
	}
	return 1 << (b - 1)
}

// SpecializationLevel represents how many branches a call site has seen.
type SpecializationLevel uint8

const (
	SpecializationUninitialized SpecializationLevel = iota // Never executed
	SpecializationMonomorphic                              // One branch seen
	SpecializationPolymorphic                              // Two or more branches seen
)

func (l SpecializationLevel) String() string {
	switch l {
	case SpecializationMonomorphic:
		return "monomorphic"
	case SpecializationPolymorphic:
		return "polymorphic"
	}
	return "uninitialized"
}

// Packed state word layout.
const (
	activeMask uint32 = 0x7 // bits 0-2: active set
	lastShift         = 8   // bits 8-9: last branch
	lastMask   uint32 = 0x3 << lastShift
)

// SpecializationState is the advisory cache for a single call site.
type SpecializationState struct {
	word atomic.Uint32

	// Statistics for profiling
	hits   atomic.Uint64 // Hinted guard held
	misses atomic.Uint64 // No hint, or hinted guard failed
}

// Hint returns the branch taken most recently, or BranchNone.
func (s *SpecializationState) Hint() Branch {
	return Branch((s.word.Load() & lastMask) >> lastShift)
}

// Record notes that branch b was taken. hit reports whether the hinted
// guard held for this invocation.
func (s *SpecializationState) Record(b Branch, hit bool) {
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	for {
		old := s.word.Load()
		next := (old & activeMask) | b.bit() | uint32(b)<<lastShift
		if old == next || s.word.CompareAndSwap(old, next) {
			return
		}
	}
}

// Level returns the specialization level derived from the active set.
func (s *SpecializationState) Level() SpecializationLevel {
	switch n := bits.OnesCount32(s.word.Load() & activeMask); {
	case n == 0:
		return SpecializationUninitialized
	case n == 1:
		return SpecializationMonomorphic
	default:
		return SpecializationPolymorphic
	}
}

// IsActive returns true if branch b has been taken at this call site.
func (s *SpecializationState) IsActive(b Branch) bool {
	return b != BranchNone && s.word.Load()&b.bit() != 0
}

// Active returns the branches taken at this call site in canonical order.
func (s *SpecializationState) Active() []Branch {
	w := s.word.Load()
	var out []Branch
	for b := BranchInvalid; b <= BranchSparse; b++ {
		if w&b.bit() != 0 {
			out = append(out, b)
		}
	}
	return out
}

// Hits returns how often the hinted guard held.
func (s *SpecializationState) Hits() uint64 { return s.hits.Load() }

// Misses returns how often dispatch fell back to canonical order.
func (s *SpecializationState) Misses() uint64 { return s.misses.Load() }

// HitRate returns the hint hit rate as a percentage (0-100).
func (s *SpecializationState) HitRate() float64 {
	hits, misses := s.Hits(), s.Misses()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) * 100 / float64(total)
}

// Reset clears the state back to uninitialized.
func (s *SpecializationState) Reset() {
	s.word.Store(0)
	s.hits.Store(0)
	s.misses.Store(0)
}

// ---------------------------------------------------------------------------
// Call-site table
// ---------------------------------------------------------------------------

// CallSiteTable manages specialization state for every call site of an
// operation. Sites are keyed by an int (typically a bytecode PC) and are
// created lazily on first use.
type CallSiteTable struct {
	sites sync.Map // int -> *SpecializationState
}

// NewCallSiteTable creates an empty table.
func NewCallSiteTable() *CallSiteTable {
	return &CallSiteTable{}
}

// GetOrCreate returns the state for site, creating one if needed.
func (t *CallSiteTable) GetOrCreate(site int) *SpecializationState {
	if s, ok := t.sites.Load(site); ok {
		return s.(*SpecializationState)
	}
	s, _ := t.sites.LoadOrStore(site, &SpecializationState{})
	return s.(*SpecializationState)
}

// Get returns the state for site, or nil if none exists.
func (t *CallSiteTable) Get(site int) *SpecializationState {
	if s, ok := t.sites.Load(site); ok {
		return s.(*SpecializationState)
	}
	return nil
}

// Sites returns all known call sites in ascending order.
func (t *CallSiteTable) Sites() []int {
	var out []int
	t.sites.Range(func(k, _ any) bool {
		out = append(out, k.(int))
		return true
	})
	sort.Ints(out)
	return out
}

// Reset clears every call site back to uninitialized.
func (t *CallSiteTable) Reset() {
	t.sites.Range(func(_, v any) bool {
		v.(*SpecializationState).Reset()
		return true
	})
}

// SpecializationStats holds aggregate call-site statistics.
type SpecializationStats struct {
	TotalCallSites  int     // Call sites with state
	Uninitialized   int     // Never executed
	Monomorphic     int     // One branch seen
	Polymorphic     int     // Two or more branches seen
	DenseSites      int     // Sites with the dense branch active
	SparseSites     int     // Sites with the sparse branch active
	InvalidSites    int     // Sites with the invalid branch active
	TotalHits       uint64  // Total hint hits
	TotalMisses     uint64  // Total hint misses
	HitRate         float64 // Overall hit rate percentage
	MonomorphicRate float64 // Percentage of executed sites that are monomorphic
}

// Stats gathers statistics across all call sites.
func (t *CallSiteTable) Stats() SpecializationStats {
	var stats SpecializationStats

	t.sites.Range(func(_, v any) bool {
		s := v.(*SpecializationState)
		stats.TotalCallSites++
		switch s.Level() {
		case SpecializationUninitialized:
			stats.Uninitialized++
		case SpecializationMonomorphic:
			stats.Monomorphic++
		case SpecializationPolymorphic:
			stats.Polymorphic++
		}
		if s.IsActive(BranchDense) {
			stats.DenseSites++
		}
		if s.IsActive(BranchSparse) {
			stats.SparseSites++
		}
		if s.IsActive(BranchInvalid) {
			stats.InvalidSites++
		}
		stats.TotalHits += s.Hits()
		stats.TotalMisses += s.Misses()
		return true
	})

	if total := stats.TotalHits + stats.TotalMisses; total > 0 {
		stats.HitRate = float64(stats.TotalHits) * 100 / float64(total)
	}
	if executed := stats.TotalCallSites - stats.Uninitialized; executed > 0 {
		stats.MonomorphicRate = float64(stats.Monomorphic) * 100 / float64(executed)
	}
	return stats
}
