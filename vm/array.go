package vm

// ---------------------------------------------------------------------------
// Array objects
// ---------------------------------------------------------------------------

// Representation identifies the storage strategy of an array.
type Representation uint8

const (
	Dense  Representation = iota // Contiguous slots
	Sparse                       // Elements materialized on first write
)

func (r Representation) String() string {
	switch r {
	case Dense:
		return "dense"
	case Sparse:
		return "sparse"
	}
	return "unknown"
}

// ArrayObject is an array-like runtime object. Its length may exceed the
// number of elements actually stored; unwritten indices read as absent.
type ArrayObject struct {
	id     uint64
	length int64
	repr   Representation

	dense  []Value          // Dense backing, hole for unwritten slots
	sparse map[uint32]Value // Sparse backing, nil until first write
}

// ID returns the identity of the object, unique within its Context.
func (a *ArrayObject) ID() uint64 { return a.id }

// Length returns the reported length.
func (a *ArrayObject) Length() int64 { return a.length }

// Representation returns the storage strategy chosen at creation.
func (a *ArrayObject) Representation() Representation { return a.repr }

// IsDense returns true if the array uses dense storage.
func (a *ArrayObject) IsDense() bool { return a.repr == Dense }

// IsSparse returns true if the array uses sparse storage.
func (a *ArrayObject) IsSparse() bool { return a.repr == Sparse }

// Capacity returns the number of slots currently reserved by the backing
// store. Sparse arrays reserve nothing until written.
func (a *ArrayObject) Capacity() int {
	if a.repr == Dense {
		return cap(a.dense)
	}
	return len(a.sparse)
}

// Materialized returns the number of elements actually written.
func (a *ArrayObject) Materialized() int {
	if a.repr == Sparse {
		return len(a.sparse)
	}
	n := 0
	for _, v := range a.dense {
		if v != hole {
			n++
		}
	}
	return n
}

// Get returns the element at index i. The second result is false for
// unwritten or out-of-range indices.
func (a *ArrayObject) Get(i int64) (Value, bool) {
	if i < 0 || i >= a.length {
		return Undefined, false
	}
	if a.repr == Sparse {
		v, ok := a.sparse[uint32(i)]
		if !ok {
			return Undefined, false
		}
		return v, true
	}
	if i >= int64(len(a.dense)) || a.dense[i] == hole {
		return Undefined, false
	}
	return a.dense[i], true
}

// Set stores v at index i, extending the length when i is past the end.
// Valid indices are 0 <= i < MaxArrayLength.
func (a *ArrayObject) Set(i int64, v Value) error {
	if i < 0 || i >= MaxArrayLength {
		return ErrInvalidArrayIndex
	}
	if a.repr == Sparse {
		if a.sparse == nil {
			a.sparse = make(map[uint32]Value)
		}
		a.sparse[uint32(i)] = v
	} else {
		if i > SmallThreshold {
			return ErrInvalidArrayIndex
		}
		for int64(len(a.dense)) <= i {
			a.dense = append(a.dense, hole)
		}
		a.dense[i] = v
	}
	if i >= a.length {
		a.length = i + 1
	}
	return nil
}
