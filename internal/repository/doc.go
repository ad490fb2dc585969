// Package repository provides GraphQL-backed access to the commerce
// platform, one repository per entity family (shop, channels, warehouses,
// attributes, product types, categories, products).
//
// Each repository maps between the declarative configuration shapes in
// internal/config and the platform's wire types, and routes every remote
// call through a shared resilience.Context so concurrency limiting,
// retries and adaptive rate limiting apply uniformly. Entities the
// platform addresses by opaque ID are returned as Remote values pairing
// the ID with the configuration snapshot; cross-entity references
// declared by slug (a product's type, a category's parent) are resolved
// through slug-to-ID maps installed once the referenced family has been
// reconciled.
package repository
