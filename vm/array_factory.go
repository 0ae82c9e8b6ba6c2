package vm

// ArrayFactory builds array objects for lengths that have already been
// validated. CreateDense is only called with length <= SmallThreshold and
// CreateSparse only with SmallThreshold < length <= MaxArrayLength.
type ArrayFactory interface {
	CreateDense(ctx *Context, length int64) *ArrayObject
	CreateSparse(ctx *Context, length int64) *ArrayObject
}

// DefaultArrayFactory is the standard ArrayFactory.
type DefaultArrayFactory struct{}

// CreateDense returns an array with contiguous storage. At most
// ctx.DensePrealloc() slots are reserved now; the rest grow on write.
func (DefaultArrayFactory) CreateDense(ctx *Context, length int64) *ArrayObject {
	reserve := length
	if limit := int64(ctx.DensePrealloc()); reserve > limit {
		reserve = limit
	}
	return &ArrayObject{
		id:     ctx.newObjectID(),
		length: length,
		repr:   Dense,
		dense:  make([]Value, 0, reserve),
	}
}

// CreateSparse returns an array whose storage is allocated on first write.
func (DefaultArrayFactory) CreateSparse(ctx *Context, length int64) *ArrayObject {
	return &ArrayObject{
		id:     ctx.newObjectID(),
		length: length,
		repr:   Sparse,
	}
}
