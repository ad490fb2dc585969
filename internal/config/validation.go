package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// newValidator builds the struct validator with the custom "slug" rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tag names, which cannot happen here.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the desired-state document before any network call is made.
//
// Two layers run in order: per-field struct validation (required fields,
// slug shape, email/country formats), then cross-entity checks (duplicate
// natural keys within a collection, references to undeclared entities).
// Both produce ValidationError-classified failures that abort the run.
func Validate(config *StoreConfig) error {
	v := newValidator()
	if err := v.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return newValidationError("",
				fmt.Sprintf("field %s failed %q validation", first.Namespace(), first.Tag()),
				"check the field against the documented schema")
		}
		return err
	}

	if err := checkDuplicateKeys(config); err != nil {
		return err
	}
	return checkReferences(config)
}

// checkDuplicateKeys rejects collections that declare the same natural key
// twice. Silent last-wins override would make half the document dead weight.
func checkDuplicateKeys(config *StoreConfig) error {
	collections := []struct {
		category string
		keys     []string
	}{
		{"channels", channelKeys(config.Channels)},
		{"warehouses", warehouseKeys(config.Warehouses)},
		{"attributes", attributeKeys(config.Attributes)},
		{"productTypes", productTypeKeys(config.ProductTypes)},
		{"categories", categoryKeys(config.Categories)},
		{"products", productKeys(config.Products)},
	}

	for _, c := range collections {
		seen := make(map[string]bool, len(c.keys))
		for _, key := range c.keys {
			if seen[key] {
				return newValidationError(c.category,
					fmt.Sprintf("duplicate slug %q", key),
					"each entity must have a unique slug within its collection")
			}
			seen[key] = true
		}
	}
	return nil
}

// checkReferences verifies that every cross-entity reference points at a
// declared entity, so a deploy never discovers a dangling reference halfway
// through.
func checkReferences(config *StoreConfig) error {
	channels := stringSet(channelKeys(config.Channels))
	attributes := stringSet(attributeKeys(config.Attributes))
	productTypes := stringSet(productTypeKeys(config.ProductTypes))
	categories := stringSet(categoryKeys(config.Categories))

	for _, pt := range config.ProductTypes {
		for _, attr := range pt.ProductAttributes {
			if !attributes[attr] {
				return newValidationError("productTypes",
					fmt.Sprintf("product type %q references undeclared attribute %q", pt.Slug, attr))
			}
		}
	}

	for _, cat := range config.Categories {
		if cat.Parent != "" && !categories[cat.Parent] {
			return newValidationError("categories",
				fmt.Sprintf("category %q references undeclared parent %q", cat.Slug, cat.Parent))
		}
		if cat.Parent == cat.Slug {
			return newValidationError("categories",
				fmt.Sprintf("category %q cannot be its own parent", cat.Slug))
		}
	}

	for _, p := range config.Products {
		if !productTypes[p.ProductType] {
			return newValidationError("products",
				fmt.Sprintf("product %q references undeclared product type %q", p.Slug, p.ProductType))
		}
		if p.Category != "" && !categories[p.Category] {
			return newValidationError("products",
				fmt.Sprintf("product %q references undeclared category %q", p.Slug, p.Category))
		}
		seenSkus := make(map[string]bool, len(p.Variants))
		for _, variant := range p.Variants {
			if seenSkus[variant.Sku] {
				return newValidationError("products",
					fmt.Sprintf("product %q declares duplicate variant SKU %q", p.Slug, variant.Sku))
			}
			seenSkus[variant.Sku] = true
		}
		for _, listing := range p.ChannelListings {
			if !channels[listing.Channel] {
				return newValidationError("products",
					fmt.Sprintf("product %q lists undeclared channel %q", p.Slug, listing.Channel))
			}
		}
	}
	return nil
}

func channelKeys(channels []Channel) []string {
	keys := make([]string, len(channels))
	for i, c := range channels {
		keys[i] = c.Slug
	}
	return keys
}

func warehouseKeys(warehouses []Warehouse) []string {
	keys := make([]string, len(warehouses))
	for i, w := range warehouses {
		keys[i] = w.Slug
	}
	return keys
}

func attributeKeys(attributes []Attribute) []string {
	keys := make([]string, len(attributes))
	for i, a := range attributes {
		keys[i] = a.Slug
	}
	return keys
}

func productTypeKeys(productTypes []ProductType) []string {
	keys := make([]string, len(productTypes))
	for i, pt := range productTypes {
		keys[i] = pt.Slug
	}
	return keys
}

func categoryKeys(categories []Category) []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Slug
	}
	return keys
}

func productKeys(products []Product) []string {
	keys := make([]string, len(products))
	for i, p := range products {
		keys[i] = p.Slug
	}
	return keys
}

func stringSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}
