package vm

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// DefaultDensePrealloc is the default number of dense slots reserved up
// front when an array is created.
const DefaultDensePrealloc = 1024

// ContextOptions configures a Context.
type ContextOptions struct {
	// DensePrealloc caps the slots reserved eagerly for a dense array.
	// Negative values mean DefaultDensePrealloc.
	DensePrealloc int

	// Logger receives runtime log output. Defaults to the "arraycreate.vm" logger.
	Logger commonlog.Logger
}

// Context is the allocation and configuration handle threaded through
// every array creation. It is owned by the caller and passed explicitly.
type Context struct {
	id            uuid.UUID
	densePrealloc int
	log           commonlog.Logger

	nextObjectID atomic.Uint64

	// Allocation statistics
	denseCreated  atomic.Uint64
	sparseCreated atomic.Uint64
	errorsRaised  atomic.Uint64
}

// NewContext creates a context with the given options.
func NewContext(opts ContextOptions) *Context {
	if opts.DensePrealloc < 0 {
		opts.DensePrealloc = DefaultDensePrealloc
	}
	if opts.Logger == nil {
		opts.Logger = commonlog.GetLogger("arraycreate.vm")
	}
	return &Context{
		id:            uuid.New(),
		densePrealloc: opts.DensePrealloc,
		log:           opts.Logger,
	}
}

// NewDefaultContext creates a context with default options.
func NewDefaultContext() *Context {
	return NewContext(ContextOptions{DensePrealloc: DefaultDensePrealloc})
}

// ID returns the unique identifier of this context.
func (c *Context) ID() uuid.UUID { return c.id }

// DensePrealloc returns the eager dense reservation cap.
func (c *Context) DensePrealloc() int { return c.densePrealloc }

// Logger returns the context logger.
func (c *Context) Logger() commonlog.Logger { return c.log }

func (c *Context) newObjectID() uint64 {
	return c.nextObjectID.Add(1)
}

// AllocationStats counts what a context has produced.
type AllocationStats struct {
	Dense  uint64
	Sparse uint64
	Errors uint64
}

// Stats returns a snapshot of the allocation counters.
func (c *Context) Stats() AllocationStats {
	return AllocationStats{
		Dense:  c.denseCreated.Load(),
		Sparse: c.sparseCreated.Load(),
		Errors: c.errorsRaised.Load(),
	}
}
