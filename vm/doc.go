// Package vm implements the ArrayCreate abstract operation of a dynamic
// language runtime.
//
// This package contains:
//   - NaN-boxed value representation
//   - The array length validity predicate
//   - Dense and sparse array objects
//   - The guarded ArrayCreate node with per-call-site specialization
//   - Call-site profiling
package vm
