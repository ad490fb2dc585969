package diff

import (
	"fmt"

	"storesync/internal/resilience"
	"storesync/pkg/logging"
)

// Collection describes how to diff one entity family. Key extracts the
// natural identifier, Name the display name, and Changes computes the
// field-level deltas between a current and a desired entity.
//
// Changes implements declared-field diffing: it must only report fields the
// desired configuration explicitly sets. A field the configuration leaves
// unset is never a delta, whatever the remote value is.
type Collection[T any] struct {
	Type    string
	Key     func(T) string
	Name    func(T) string
	Changes func(current, desired T) []Change
}

// Diff compares a desired against a current snapshot of the collection and
// returns the ordered result list: desired-order creates and updates first,
// then deletions in current order.
//
// A duplicate key in the desired input fails fast; a silent last-wins
// override would leave part of the configuration dead.
func (c Collection[T]) Diff(desired, current []T) ([]Result, error) {
	currentByKey := make(map[string]T, len(current))
	for _, entity := range current {
		currentByKey[c.Key(entity)] = entity
	}

	seen := make(map[string]bool, len(desired))
	var results []Result

	for _, want := range desired {
		key := c.Key(want)
		if seen[key] {
			return nil, resilience.NewValidationError(
				fmt.Sprintf("duplicate %s key %q in desired configuration", c.Type, key))
		}
		seen[key] = true

		have, exists := currentByKey[key]
		if !exists {
			results = append(results, Result{
				Operation:  OperationCreate,
				EntityType: c.Type,
				EntityName: c.Name(want),
				Desired:    want,
			})
			continue
		}

		changes := c.Changes(have, want)
		if len(changes) == 0 {
			continue
		}
		results = append(results, Result{
			Operation:  OperationUpdate,
			EntityType: c.Type,
			EntityName: c.Name(want),
			Current:    have,
			Desired:    want,
			Changes:    changes,
		})
	}

	for _, have := range current {
		if seen[c.Key(have)] {
			continue
		}
		results = append(results, Result{
			Operation:  OperationDelete,
			EntityType: c.Type,
			EntityName: c.Name(have),
			Current:    have,
		})
	}

	logging.Debug("DiffEngine", "Diffed %s: %d desired, %d current, %d results",
		c.Type, len(desired), len(current), len(results))
	return results, nil
}

// CompareString reports a delta when the desired value is declared
// (non-empty) and differs from the current one.
func CompareString(field, current, desired string) *Change {
	if desired == "" || current == desired {
		return nil
	}
	return &Change{
		Field:       field,
		Current:     current,
		Desired:     desired,
		Description: fmt.Sprintf("%s: %q -> %q", field, current, desired),
	}
}

// CompareBool reports a delta when the desired pointer is declared and its
// value differs from the current one.
func CompareBool(field string, current bool, desired *bool) *Change {
	if desired == nil || current == *desired {
		return nil
	}
	return &Change{
		Field:       field,
		Current:     current,
		Desired:     *desired,
		Description: fmt.Sprintf("%s: %t -> %t", field, current, *desired),
	}
}

// CompareFloat reports a delta when the desired value is declared (non-zero)
// and differs from the current one.
func CompareFloat(field string, current, desired float64) *Change {
	if desired == 0 || current == desired {
		return nil
	}
	return &Change{
		Field:       field,
		Current:     current,
		Desired:     desired,
		Description: fmt.Sprintf("%s: %v -> %v", field, current, desired),
	}
}

// CompareStringSlice reports a delta when the desired slice is declared
// (non-nil) and differs element-wise from the current one.
func CompareStringSlice(field string, current, desired []string) *Change {
	if desired == nil || stringSlicesEqual(current, desired) {
		return nil
	}
	return &Change{
		Field:       field,
		Current:     current,
		Desired:     desired,
		Description: fmt.Sprintf("%s: %v -> %v", field, current, desired),
	}
}

// AppendChange appends a change when it is non-nil. It keeps entity
// comparators down to one line per field.
func AppendChange(changes []Change, change *Change) []Change {
	if change == nil {
		return changes
	}
	return append(changes, *change)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
