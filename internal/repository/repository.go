package repository

import (
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

// Remote pairs an entity snapshot (mapped to the configuration shape) with
// the platform's opaque ID, which updates and deletes need.
type Remote[T any] struct {
	ID     string
	Entity T
}

// Entities strips the IDs off a Remote slice, for feeding the diff engine.
func Entities[T any](remotes []Remote[T]) []T {
	out := make([]T, len(remotes))
	for i, r := range remotes {
		out[i] = r.Entity
	}
	return out
}

// IDsByKey indexes remote IDs by the entity's natural key.
func IDsByKey[T any](remotes []Remote[T], key func(T) string) map[string]string {
	out := make(map[string]string, len(remotes))
	for _, r := range remotes {
		out[key(r.Entity)] = r.ID
	}
	return out
}

// payloadError is the mutation-level error shape the platform embeds in
// otherwise-successful responses.
type payloadError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// payloadErrorsToError converts embedded mutation errors into the same
// GraphQLErrors shape the transport produces, so the resilience classifier
// treats both identically.
func payloadErrorsToError(errs []payloadError) error {
	if len(errs) == 0 {
		return nil
	}
	out := make(graphql.GraphQLErrors, len(errs))
	for i, pe := range errs {
		ge := graphql.GraphQLError{Message: pe.Message, Code: pe.Code}
		if pe.Field != "" {
			ge.Path = []string{pe.Field}
		}
		out[i] = ge
	}
	return out
}

// Set bundles one repository per entity family, all sharing a client and a
// resilience context.
type Set struct {
	Shop         *ShopRepository
	Channels     *ChannelRepository
	Warehouses   *WarehouseRepository
	Attributes   *AttributeRepository
	ProductTypes *ProductTypeRepository
	Categories   *CategoryRepository
	Products     *ProductRepository
}

// NewSet constructs all repositories over one client and one resilience
// context. Every remote call any repository makes runs under rc.Execute,
// so the concurrency gate, retry budget and adaptive rate limiting all
// apply uniformly.
func NewSet(client *graphql.Client, rc *resilience.Context) *Set {
	return &Set{
		Shop:         &ShopRepository{client: client, rc: rc},
		Channels:     &ChannelRepository{client: client, rc: rc},
		Warehouses:   &WarehouseRepository{client: client, rc: rc},
		Attributes:   &AttributeRepository{client: client, rc: rc},
		ProductTypes: &ProductTypeRepository{client: client, rc: rc},
		Categories:   &CategoryRepository{client: client, rc: rc},
		Products:     &ProductRepository{client: client, rc: rc},
	}
}
