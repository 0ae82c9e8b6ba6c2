package vm

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Profiler tracks invocation counts per call site to identify sites that
// are worth specializing. A site becomes hot once after HotThreshold
// invocations and OnHot is called with its specialization state.

// DefaultHotThreshold is the default invocation count for a hot site.
const DefaultHotThreshold = 100

// SiteProfile holds profiling data for a single call site.
type SiteProfile struct {
	InvocationCount atomic.Uint64
	hot             atomic.Bool
}

// IsHot returns true if the threshold has been exceeded.
func (sp *SiteProfile) IsHot() bool { return sp.hot.Load() }

// Profiler manages profiling for all call sites of a runtime.
type Profiler struct {
	sites sync.Map // int -> *SiteProfile

	// HotThreshold is the invocation count at which a site becomes hot.
	HotThreshold uint64

	// OnHot is called once per site when it becomes hot. state may be nil
	// when specialization is disabled.
	OnHot func(site int, state *SpecializationState)

	hotSiteCount atomic.Uint64
}

// NewProfiler creates a new profiler with the default threshold.
func NewProfiler() *Profiler {
	return &Profiler{HotThreshold: DefaultHotThreshold}
}

// RecordInvocation increments the invocation count for a site.
// Returns true if this invocation caused the site to become hot.
func (p *Profiler) RecordInvocation(site int, state *SpecializationState) bool {
	val, ok := p.sites.Load(site)
	if !ok {
		val, _ = p.sites.LoadOrStore(site, &SiteProfile{})
	}
	profile := val.(*SiteProfile)

	count := profile.InvocationCount.Add(1)
	if count < p.HotThreshold || !profile.hot.CompareAndSwap(false, true) {
		return false
	}
	p.hotSiteCount.Add(1)
	if p.OnHot != nil {
		p.OnHot(site, state)
	}
	return true
}

// Profile returns the profile for a site, or nil if not tracked.
func (p *Profiler) Profile(site int) *SiteProfile {
	if val, ok := p.sites.Load(site); ok {
		return val.(*SiteProfile)
	}
	return nil
}

// IsHot returns true if the site has exceeded the hot threshold.
func (p *Profiler) IsHot(site int) bool {
	profile := p.Profile(site)
	return profile != nil && profile.IsHot()
}

// Invocations returns the invocation count for a site.
func (p *Profiler) Invocations(site int) uint64 {
	if profile := p.Profile(site); profile != nil {
		return profile.InvocationCount.Load()
	}
	return 0
}

// HotCount returns how many sites have become hot.
func (p *Profiler) HotCount() uint64 { return p.hotSiteCount.Load() }

// ProfilerStats holds aggregate profiling statistics.
type ProfilerStats struct {
	TotalSites       int    // Number of sites profiled
	HotSites         int    // Number of hot sites
	TotalInvocations uint64 // Invocations across all sites
}

// Stats returns aggregate profiling statistics.
func (p *Profiler) Stats() ProfilerStats {
	var stats ProfilerStats
	p.sites.Range(func(_, value any) bool {
		profile := value.(*SiteProfile)
		stats.TotalSites++
		stats.TotalInvocations += profile.InvocationCount.Load()
		if profile.IsHot() {
			stats.HotSites++
		}
		return true
	})
	return stats
}

// HotSites returns all hot call sites in ascending order.
func (p *Profiler) HotSites() []int {
	var hot []int
	p.sites.Range(func(key, value any) bool {
		if value.(*SiteProfile).IsHot() {
			hot = append(hot, key.(int))
		}
		return true
	})
	sort.Ints(hot)
	return hot
}

// TopSites returns the n most frequently invoked call sites.
func (p *Profiler) TopSites(n int) []int {
	type siteCount struct {
		site  int
		count uint64
	}

	var all []siteCount
	p.sites.Range(func(key, value any) bool {
		all = append(all, siteCount{key.(int), value.(*SiteProfile).InvocationCount.Load()})
		return true
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].site < all[j].site
	})

	result := make([]int, 0, n)
	for i := 0; i < n && i < len(all); i++ {
		result = append(result, all[i].site)
	}
	return result
}

// Reset clears all profiles.
func (p *Profiler) Reset() {
	p.sites.Range(func(key, _ any) bool {
		p.sites.Delete(key)
		return true
	})
	p.hotSiteCount.Store(0)
}
