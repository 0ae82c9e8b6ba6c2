package vm

import (
	"errors"
	"testing"
)

func TestDenseArrayPreallocCap(t *testing.T) {
	ctx := NewContext(ContextOptions{DensePrealloc: 8})
	f := DefaultArrayFactory{}

	small := f.CreateDense(ctx, 3)
	if small.Capacity() != 3 {
		t.Errorf("Expected capacity 3, got %d", small.Capacity())
	}

	big := f.CreateDense(ctx, SmallThreshold)
	if big.Capacity() != 8 {
		t.Errorf("Expected capacity capped at 8, got %d", big.Capacity())
	}
	if big.Length() != SmallThreshold {
		t.Errorf("Expected length %d, got %d", SmallThreshold, big.Length())
	}
}

func TestDenseArrayGetSet(t *testing.T) {
	ctx := NewDefaultContext()
	a := DefaultArrayFactory{}.CreateDense(ctx, 4)

	if _, ok := a.Get(2); ok {
		t.Error("Expected hole at index 2")
	}
	if err := a.Set(2, FromSmallInt(7)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := a.Get(2)
	if !ok || v.SmallInt() != 7 {
		t.Errorf("Expected 7 at index 2, got %s (present=%v)", v, ok)
	}
	if _, ok := a.Get(1); ok {
		t.Error("Expected hole at index 1 after writing index 2")
	}
	if a.Materialized() != 1 {
		t.Errorf("Expected 1 materialized element, got %d", a.Materialized())
	}
	if a.Length() != 4 {
		t.Errorf("Expected length unchanged at 4, got %d", a.Length())
	}

	if err := a.Set(9, True); err != nil {
		t.Fatalf("Set past end failed: %v", err)
	}
	if a.Length() != 10 {
		t.Errorf("Expected length 10 after writing index 9, got %d", a.Length())
	}
}

func TestSparseArrayIsLazy(t *testing.T) {
	ctx := NewDefaultContext()
	a := DefaultArrayFactory{}.CreateSparse(ctx, 1<<31)

	if a.Capacity() != 0 || a.sparse != nil {
		t.Fatal("Sparse array should not allocate storage before first write")
	}
	if _, ok := a.Get(1 << 30); ok {
		t.Error("Expected absent element")
	}

	idx := int64(1<<31) + 5
	if err := a.Set(idx, FromSmallInt(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if a.Materialized() != 1 {
		t.Errorf("Expected 1 materialized element, got %d", a.Materialized())
	}
	if a.Length() != idx+1 {
		t.Errorf("Expected length %d, got %d", idx+1, a.Length())
	}
	if v, ok := a.Get(idx); !ok || v.SmallInt() != 1 {
		t.Errorf("Expected 1 at %d", idx)
	}
}

func TestArraySetInvalidIndex(t *testing.T) {
	ctx := NewDefaultContext()
	a := DefaultArrayFactory{}.CreateSparse(ctx, MaxArrayLength)

	for _, idx := range []int64{-1, MaxArrayLength} {
		err := a.Set(idx, Nil)
		if !errors.Is(err, ErrInvalidArrayIndex) {
			t.Errorf("Set(%d) = %v, want ErrInvalidArrayIndex", idx, err)
		}
	}
	if a.Length() != MaxArrayLength {
		t.Errorf("Failed writes changed length to %d", a.Length())
	}
}

func TestRepresentationString(t *testing.T) {
	if Dense.String() != "dense" || Sparse.String() != "sparse" {
		t.Error("Unexpected representation names")
	}
}
