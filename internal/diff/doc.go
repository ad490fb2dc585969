// Package diff computes the minimal set of operations that would bring a
// remote entity collection in line with a desired snapshot.
//
// The engine is generic over the entity type: a Collection bundles the key
// and name extractors with a Changes comparator, and Diff produces the
// ordered CREATE/UPDATE/DELETE results. Comparators follow declared-field
// diffing (only fields the desired configuration explicitly sets count as
// deltas), using the Compare* helpers in this package.
//
// Diffing is pure and deterministic: the same inputs always produce the
// same result list, and summary counters are derived from the results
// rather than tracked separately.
package diff
