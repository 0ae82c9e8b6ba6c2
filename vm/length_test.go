package vm

import (
	"math"
	"testing"
)

func TestToArrayLength(t *testing.T) {
	tests := []struct {
		name  string
		v     Value
		want  int64
		valid bool
	}{
		{"zero", FromSmallInt(0), 0, true},
		{"ten", FromSmallInt(10), 10, true},
		{"max int32", FromSmallInt(math.MaxInt32), math.MaxInt32, true},
		{"2^31", FromSmallInt(1 << 31), 1 << 31, true},
		{"max length", FromSmallInt(MaxArrayLength), MaxArrayLength, true},
		{"2^32", FromSmallInt(1 << 32), 0, false},
		{"negative", FromSmallInt(-1), 0, false},
		{"float integral", FromFloat64(5), 5, true},
		{"float 2^31", FromFloat64(1 << 31), 1 << 31, true},
		{"negative zero", FromFloat64(math.Copysign(0, -1)), 0, true},
		{"float fraction", FromFloat64(1.5), 0, false},
		{"float negative", FromFloat64(-3), 0, false},
		{"float 2^32", FromFloat64(1 << 32), 0, false},
		{"NaN", FromFloat64(math.NaN()), 0, false},
		{"Infinity", FromFloat64(math.Inf(1)), 0, false},
		{"-Infinity", FromFloat64(math.Inf(-1)), 0, false},
		{"undefined", Undefined, 0, false},
		{"null", Nil, 0, false},
		{"true", True, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToArrayLength(tt.v)
			if ok != tt.valid {
				t.Fatalf("ToArrayLength(%s) valid = %v, want %v", tt.v, ok, tt.valid)
			}
			if ok && got != tt.want {
				t.Errorf("ToArrayLength(%s) = %d, want %d", tt.v, got, tt.want)
			}
			if IsValidArrayLength(tt.v) != tt.valid {
				t.Errorf("IsValidArrayLength(%s) disagrees with ToArrayLength", tt.v)
			}
		})
	}
}

func TestLengthConstants(t *testing.T) {
	if SmallThreshold != 2147483647 {
		t.Errorf("SmallThreshold = %d, want 2^31-1", SmallThreshold)
	}
	if MaxArrayLength != 4294967295 {
		t.Errorf("MaxArrayLength = %d, want 2^32-1", MaxArrayLength)
	}
}
