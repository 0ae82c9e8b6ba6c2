package vm

import "math"

// Array length bounds.
const (
	// MaxArrayLength is the largest legal array length (2^32 - 1).
	MaxArrayLength int64 = math.MaxUint32

	// SmallThreshold is the largest length created with dense storage.
	// Lengths above it get sparse storage. This is a fixed constant and
	// must not vary between runtimes that are compared against each other.
	SmallThreshold int64 = math.MaxInt32
)

// ToArrayLength converts v to an array length. The second result is false
// when v is not an integral number in [0, MaxArrayLength]. Negative zero
// converts to 0.
func ToArrayLength(v Value) (int64, bool) {
	if v.IsSmallInt() {
		n := v.SmallInt()
		return n, n >= 0 && n <= MaxArrayLength
	}
	if !v.IsFloat() {
		return 0, false
	}
	f := v.Float64()
	if math.IsNaN(f) || f < 0 || f > float64(MaxArrayLength) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// IsValidArrayLength reports whether v is a legal array length.
func IsValidArrayLength(v Value) bool {
	_, ok := ToArrayLength(v)
	return ok
}

// isValidIntLength is the int64 form of the predicate.
func isValidIntLength(n int64) bool {
	return n >= 0 && n <= MaxArrayLength
}
