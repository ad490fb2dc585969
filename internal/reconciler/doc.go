// Package reconciler drives the declared store configuration toward the
// remote platform state.
//
// A run proceeds in a fixed stage order (shop, channels, warehouses,
// attributes, product types, categories, products) so that every
// slug-based cross reference resolves against entities that already
// exist. Within a stage the reconciler diffs the declaration against the
// listed remote state, then applies creates and updates; deletions of
// undeclared remote entities happen only in destructive mode. Products
// are created through bulk mutations fed by the chunked batch processor.
//
// Stage failures are isolated twice over: a failed item does not abort
// its siblings, and a failed stage does not abort the remaining stages.
// Only a validation error, which retrying cannot fix, stops the run.
package reconciler
