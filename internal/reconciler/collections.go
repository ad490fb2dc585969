package reconciler

import (
	"fmt"

	"storesync/internal/config"
	"storesync/internal/diff"
)

// The collections below describe, one entity family at a time, how to key
// an entity, how to label it for humans, and which declared fields
// participate in drift detection. Fields left unset in the declaration are
// never reported as drift against populated remote values.

func channelCollection() diff.Collection[config.Channel] {
	return diff.Collection[config.Channel]{
		Type: "channel",
		Key:  func(c config.Channel) string { return c.Slug },
		Name: func(c config.Channel) string { return c.Name },
		Changes: func(current, desired config.Channel) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			changes = diff.AppendChange(changes, diff.CompareString("currencyCode", current.CurrencyCode, desired.CurrencyCode))
			changes = diff.AppendChange(changes, diff.CompareString("defaultCountry", current.DefaultCountry, desired.DefaultCountry))
			currentActive := current.IsActive != nil && *current.IsActive
			changes = diff.AppendChange(changes, diff.CompareBool("isActive", currentActive, desired.IsActive))
			return changes
		},
	}
}

func warehouseCollection() diff.Collection[config.Warehouse] {
	return diff.Collection[config.Warehouse]{
		Type: "warehouse",
		Key:  func(w config.Warehouse) string { return w.Slug },
		Name: func(w config.Warehouse) string { return w.Name },
		Changes: func(current, desired config.Warehouse) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			changes = diff.AppendChange(changes, diff.CompareString("email", current.Email, desired.Email))
			changes = diff.AppendChange(changes, diff.CompareString("address.streetAddress1", current.Address.StreetAddress1, desired.Address.StreetAddress1))
			changes = diff.AppendChange(changes, diff.CompareString("address.city", current.Address.City, desired.Address.City))
			changes = diff.AppendChange(changes, diff.CompareString("address.postalCode", current.Address.PostalCode, desired.Address.PostalCode))
			changes = diff.AppendChange(changes, diff.CompareString("address.country", current.Address.Country, desired.Address.Country))
			return changes
		},
	}
}

func attributeCollection() diff.Collection[config.Attribute] {
	return diff.Collection[config.Attribute]{
		Type: "attribute",
		Key:  func(a config.Attribute) string { return a.Slug },
		Name: func(a config.Attribute) string { return a.Name },
		Changes: func(current, desired config.Attribute) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			changes = diff.AppendChange(changes, diff.CompareStringSlice("values", attributeValueSlugs(current.Values), attributeValueSlugs(desired.Values)))
			return changes
		},
	}
}

func attributeValueSlugs(values []config.AttributeValue) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Slug
	}
	return out
}

func productTypeCollection() diff.Collection[config.ProductType] {
	return diff.Collection[config.ProductType]{
		Type: "productType",
		Key:  func(pt config.ProductType) string { return pt.Slug },
		Name: func(pt config.ProductType) string { return pt.Name },
		Changes: func(current, desired config.ProductType) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			currentHasVariants := current.HasVariants != nil && *current.HasVariants
			changes = diff.AppendChange(changes, diff.CompareBool("hasVariants", currentHasVariants, desired.HasVariants))
			changes = diff.AppendChange(changes, diff.CompareStringSlice("productAttributes", current.ProductAttributes, desired.ProductAttributes))
			return changes
		},
	}
}

func categoryCollection() diff.Collection[config.Category] {
	return diff.Collection[config.Category]{
		Type: "category",
		Key:  func(c config.Category) string { return c.Slug },
		Name: func(c config.Category) string { return c.Name },
		Changes: func(current, desired config.Category) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			// Parent moves are reported but not applied; re-parenting a
			// category tree is a manual operation on the platform.
			changes = diff.AppendChange(changes, diff.CompareString("parent", current.Parent, desired.Parent))
			return changes
		},
	}
}

func productCollection() diff.Collection[config.Product] {
	return diff.Collection[config.Product]{
		Type: "product",
		Key:  func(p config.Product) string { return p.Slug },
		Name: func(p config.Product) string { return p.Name },
		Changes: func(current, desired config.Product) []diff.Change {
			var changes []diff.Change
			changes = diff.AppendChange(changes, diff.CompareString("name", current.Name, desired.Name))
			changes = diff.AppendChange(changes, diff.CompareString("productType", current.ProductType, desired.ProductType))
			changes = diff.AppendChange(changes, diff.CompareString("category", current.Category, desired.Category))
			changes = diff.AppendChange(changes, diff.CompareString("description", current.Description, desired.Description))
			changes = diff.AppendChange(changes, diff.CompareStringSlice("variants", variantSkus(current.Variants), variantSkus(desired.Variants)))
			changes = appendListingChanges(changes, current.ChannelListings, desired.ChannelListings)
			return changes
		},
	}
}

func variantSkus(variants []config.ProductVariant) []string {
	if len(variants) == 0 {
		return nil
	}
	out := make([]string, len(variants))
	for i, v := range variants {
		out[i] = v.Sku
	}
	return out
}

// appendListingChanges compares channel listings by channel slug. A listing
// absent from the declaration is left alone; price and publication state
// are checked per declared channel.
func appendListingChanges(changes []diff.Change, current, desired []config.ChannelListing) []diff.Change {
	if len(desired) == 0 {
		return changes
	}
	currentByChannel := make(map[string]config.ChannelListing, len(current))
	for _, l := range current {
		currentByChannel[l.Channel] = l
	}
	for _, want := range desired {
		field := fmt.Sprintf("channelListings[%s]", want.Channel)
		have, ok := currentByChannel[want.Channel]
		if !ok {
			changes = append(changes, diff.Change{
				Field:       field,
				Desired:     want,
				Description: fmt.Sprintf("%s: listing added", field),
			})
			continue
		}
		changes = diff.AppendChange(changes, diff.CompareFloat(field+".price", have.Price, want.Price))
		currentPublished := have.IsPublished != nil && *have.IsPublished
		changes = diff.AppendChange(changes, diff.CompareBool(field+".isPublished", currentPublished, want.IsPublished))
	}
	return changes
}

// shopChanges compares the declared shop settings against the remote
// snapshot, same declared-field rules as the collections.
func shopChanges(current, desired *config.ShopSettings) []diff.Change {
	var changes []diff.Change
	changes = diff.AppendChange(changes, diff.CompareString("description", current.Description, desired.Description))
	changes = diff.AppendChange(changes, diff.CompareString("defaultMailSenderName", current.DefaultMailSenderName, desired.DefaultMailSenderName))
	changes = diff.AppendChange(changes, diff.CompareString("defaultMailSenderAddress", current.DefaultMailSenderAddress, desired.DefaultMailSenderAddress))
	currentTrack := current.TrackInventoryByDefault != nil && *current.TrackInventoryByDefault
	changes = diff.AppendChange(changes, diff.CompareBool("trackInventoryByDefault", currentTrack, desired.TrackInventoryByDefault))
	return changes
}
