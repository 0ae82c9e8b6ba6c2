package vm

import (
	"strings"
	"sync"
)

// ---------------------------------------------------------------------------
// Runtime: wires the ArrayCreate operation to its collaborators
// ---------------------------------------------------------------------------

// DefaultSite is the call-site key used by Runtime.ArrayCreate.
const DefaultSite = 0

// Options configures a Runtime.
type Options struct {
	Context *Context // Allocation handle; NewDefaultContext() if nil

	Arrays ArrayFactory // DefaultArrayFactory if nil
	Errors ErrorFactory // DefaultErrorFactory if nil

	// DisableSpecialization turns off the advisory call-site cache.
	// Results are identical with or without it.
	DisableSpecialization bool

	// HotThreshold overrides the profiler threshold when non-zero.
	HotThreshold uint64
}

// Runtime owns the call sites of the ArrayCreate operation.
type Runtime struct {
	ctx    *Context
	arrays ArrayFactory
	errs   ErrorFactory

	specialize bool
	callSites  *CallSiteTable
	profiler   *Profiler

	nodes sync.Map // int -> *ArrayCreateNode
}

// NewRuntime creates a runtime with the given options.
func NewRuntime(opts Options) *Runtime {
	rt := &Runtime{
		ctx:        opts.Context,
		arrays:     opts.Arrays,
		errs:       opts.Errors,
		specialize: !opts.DisableSpecialization,
		callSites:  NewCallSiteTable(),
		profiler:   NewProfiler(),
	}
	if rt.ctx == nil {
		rt.ctx = NewDefaultContext()
	}
	if rt.arrays == nil {
		rt.arrays = DefaultArrayFactory{}
	}
	if rt.errs == nil {
		rt.errs = DefaultErrorFactory{}
	}
	if opts.HotThreshold > 0 {
		rt.profiler.HotThreshold = opts.HotThreshold
	}
	rt.profiler.OnHot = rt.logHotSite
	return rt
}

// Context returns the runtime's context.
func (rt *Runtime) Context() *Context { return rt.ctx }

// CallSites returns the specialization table.
func (rt *Runtime) CallSites() *CallSiteTable { return rt.callSites }

// Profiler returns the call-site profiler.
func (rt *Runtime) Profiler() *Profiler { return rt.profiler }

// Specializing reports whether call-site specialization is enabled.
func (rt *Runtime) Specializing() bool { return rt.specialize }

// Node returns the ArrayCreate node for a call site, creating it on first use.
func (rt *Runtime) Node(site int) *ArrayCreateNode {
	if n, ok := rt.nodes.Load(site); ok {
		return n.(*ArrayCreateNode)
	}
	var state *SpecializationState
	if rt.specialize {
		state = rt.callSites.GetOrCreate(site)
	}
	node := NewArrayCreateNode(rt.arrays, rt.errs, state)
	node.site = site
	node.profiler = rt.profiler
	n, _ := rt.nodes.LoadOrStore(site, node)
	return n.(*ArrayCreateNode)
}

// ArrayCreate creates an array of the given length at the default call site.
func (rt *Runtime) ArrayCreate(length Value) (*ArrayObject, error) {
	return rt.Node(DefaultSite).Execute(rt.ctx, length)
}

// ArrayCreateAt creates an array of the given length at a specific call site.
func (rt *Runtime) ArrayCreateAt(site int, length Value) (*ArrayObject, error) {
	return rt.Node(site).Execute(rt.ctx, length)
}

func (rt *Runtime) logHotSite(site int, state *SpecializationState) {
	if state == nil {
		rt.ctx.log.Infof("site %d is hot (specialization disabled)", site)
		return
	}
	names := make([]string, 0, NumBranches)
	for _, b := range state.Active() {
		names = append(names, b.String())
	}
	rt.ctx.log.Infof("site %d is hot: %s [%s]", site, state.Level(), strings.Join(names, ","))
}
