package vm

import "github.com/tliron/commonlog"

// ---------------------------------------------------------------------------
// ArrayCreate (length)
// ---------------------------------------------------------------------------

// guard reports whether branch b applies to a length whose validity has
// already been computed for this invocation.
func (b Branch) guard(length int64, valid bool) bool {
	switch b {
	case BranchInvalid:
		return !valid
	case BranchDense:
		return valid && length <= SmallThreshold
	case BranchSparse:
		return valid && length > SmallThreshold
	}
	return false
}

// ArrayCreateNode implements the ArrayCreate abstract operation for one
// call site. Exactly one of dense creation, sparse creation or an
// InvalidArrayLength error happens per invocation.
//
// A node with a SpecializationState checks the branch taken last time
// first. Without one it always evaluates guards in canonical order. The
// results are the same either way.
type ArrayCreateNode struct {
	arrays ArrayFactory
	errs   ErrorFactory
	state  *SpecializationState

	site     int
	profiler *Profiler
}

// NewArrayCreateNode creates a node. Nil factories fall back to the
// defaults; a nil state disables specialization.
func NewArrayCreateNode(arrays ArrayFactory, errs ErrorFactory, state *SpecializationState) *ArrayCreateNode {
	if arrays == nil {
		arrays = DefaultArrayFactory{}
	}
	if errs == nil {
		errs = DefaultErrorFactory{}
	}
	return &ArrayCreateNode{arrays: arrays, errs: errs, state: state}
}

// State returns the node's specialization state, or nil.
func (n *ArrayCreateNode) State() *SpecializationState { return n.state }

// Site returns the call-site key the node was created for.
func (n *ArrayCreateNode) Site() int { return n.site }

// Execute creates an array of the given length. length may be any value;
// its validity is determined on every call.
func (n *ArrayCreateNode) Execute(ctx *Context, length Value) (*ArrayObject, error) {
	l, valid := ToArrayLength(length)
	return n.dispatch(ctx, l, valid)
}

// ExecuteInt is Execute for a length already known to be an integer.
func (n *ArrayCreateNode) ExecuteInt(ctx *Context, length int64) (*ArrayObject, error) {
	return n.dispatch(ctx, length, isValidIntLength(length))
}

func (n *ArrayCreateNode) dispatch(ctx *Context, length int64, valid bool) (*ArrayObject, error) {
	branch, hit := n.selectBranch(length, valid)

	var (
		arr *ArrayObject
		err error
	)
	switch branch {
	case BranchDense:
		arr = n.arrays.CreateDense(ctx, length)
		ctx.denseCreated.Add(1)
	case BranchSparse:
		arr = n.arrays.CreateSparse(ctx, length)
		ctx.sparseCreated.Add(1)
	default:
		err = n.errs.InvalidArrayLengthError()
		ctx.errorsRaised.Add(1)
	}

	if n.state != nil {
		n.state.Record(branch, hit)
	}
	if n.profiler != nil {
		n.profiler.RecordInvocation(n.site, n.state)
	}
	if ctx.log.AllowLevel(commonlog.Debug) {
		ctx.log.Debug("array create", "site", n.site, "length", length, "branch", branch.String(), "hint", hit)
	}
	return arr, err
}

// selectBranch picks the branch for this invocation. The hinted branch's
// guard is tried first; on failure every guard is evaluated in order.
func (n *ArrayCreateNode) selectBranch(length int64, valid bool) (Branch, bool) {
	if n.state != nil {
		if h := n.state.Hint(); h != BranchNone && h.guard(length, valid) {
			return h, true
		}
	}
	for b := BranchInvalid; b <= BranchSparse; b++ {
		if b.guard(length, valid) {
			return b, false
		}
	}
	panic("ArrayCreateNode: no guard matched")
}
