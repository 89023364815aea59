// Package diff computes field-level differences between two attribute maps.
package diff

import (
	"reflect"

	"github.com/lingoplatform/admin-backend/pkg/serializer"
)

// Change is the before/after pair of a single attribute
type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Fields returns only the keys whose values differ between old and new.
// A key missing on one side is reported with a nil value on that side.
func Fields(old, new map[string]interface{}) map[string]Change {
	changes := make(map[string]Change)

	for key, newVal := range new {
		oldVal, ok := old[key]
		if !ok {
			changes[key] = Change{Old: nil, New: newVal}
			continue
		}
		if !Equal(oldVal, newVal) {
			changes[key] = Change{Old: oldVal, New: newVal}
		}
	}

	for key, oldVal := range old {
		if _, ok := new[key]; !ok {
			changes[key] = Change{Old: oldVal, New: nil}
		}
	}

	return changes
}

// Equal reports whether a and b are structurally equal. Values that differ
// only in Go representation (int 1 vs float64 1) are equal.
func Equal(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	na, err := serializer.Normalize(a)
	if err != nil {
		return false
	}
	nb, err := serializer.Normalize(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

// ToMap converts changes into a plain map suitable for merging with metadata
func ToMap(changes map[string]Change) map[string]interface{} {
	out := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	return out
}

// Empty reports whether changes carries no differences
func Empty(changes map[string]Change) bool {
	return len(changes) == 0
}
