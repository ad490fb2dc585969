// Package config defines the declarative desired-state document for
// storesync and its loading pipeline.
//
// A configuration file is plain YAML describing the entities the store
// should have: channels, warehouses, attributes, product types, categories,
// and products, each keyed by a natural identifier (slug). Files are rendered
// through text/template with the sprig function map before parsing, so
// environment-specific values can be injected without separate files per
// environment.
//
// Loading is fail-fast: unknown YAML fields, malformed values, duplicate
// slugs within a collection, and references to undeclared entities are all
// rejected before any network call is made. The zero-delta guarantee of the
// diff engine depends on optional fields staying optional here: an unset
// pointer or empty string means "not declared", never "set to the zero
// value".
package config
