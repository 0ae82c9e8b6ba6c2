package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/arraycreate/vm"
)

// parseLiteral converts a command-line literal into a runtime value.
// Integers that fit a SmallInt stay integral; everything else numeric
// becomes a float.
func parseLiteral(s string) (vm.Value, error) {
	switch strings.TrimSpace(s) {
	case "undefined":
		return vm.Undefined, nil
	case "null":
		return vm.Nil, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	case "NaN":
		return vm.FromFloat64(math.NaN()), nil
	case "Infinity", "+Infinity":
		return vm.FromFloat64(math.Inf(1)), nil
	case "-Infinity":
		return vm.FromFloat64(math.Inf(-1)), nil
	}

	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return vm.FromInt64(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return vm.Nil, fmt.Errorf("not a length literal: %q", s)
	}
	return vm.FromFloat64(f), nil
}
