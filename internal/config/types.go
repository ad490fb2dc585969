package config

// StoreConfig is the top-level desired-state document for storesync.
// Collections appear in deployment order: channels first because nearly
// everything else references them, products last because they reference
// everything else.
type StoreConfig struct {
	Shop         *ShopSettings `yaml:"shop,omitempty" json:"shop,omitempty"`
	Channels     []Channel     `yaml:"channels,omitempty" json:"channels,omitempty"`
	Warehouses   []Warehouse   `yaml:"warehouses,omitempty" json:"warehouses,omitempty"`
	Attributes   []Attribute   `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	ProductTypes []ProductType `yaml:"productTypes,omitempty" json:"productTypes,omitempty"`
	Categories   []Category    `yaml:"categories,omitempty" json:"categories,omitempty"`
	Products     []Product     `yaml:"products,omitempty" json:"products,omitempty"`
}

// ShopSettings holds store-wide settings. All fields are optional; an unset
// field is never treated as a delta against the remote value.
type ShopSettings struct {
	DefaultMailSenderName    string `yaml:"defaultMailSenderName,omitempty" json:"defaultMailSenderName,omitempty"`
	DefaultMailSenderAddress string `yaml:"defaultMailSenderAddress,omitempty" json:"defaultMailSenderAddress,omitempty" validate:"omitempty,email"`
	Description              string `yaml:"description,omitempty" json:"description,omitempty"`
	TrackInventoryByDefault  *bool  `yaml:"trackInventoryByDefault,omitempty" json:"trackInventoryByDefault,omitempty"`
}

// Channel is a sales channel, keyed by slug.
type Channel struct {
	Slug           string `yaml:"slug" json:"slug" validate:"required,slug"`
	Name           string `yaml:"name" json:"name" validate:"required"`
	CurrencyCode   string `yaml:"currencyCode" json:"currencyCode" validate:"required,len=3"`
	DefaultCountry string `yaml:"defaultCountry" json:"defaultCountry" validate:"required,len=2"`
	IsActive       *bool  `yaml:"isActive,omitempty" json:"isActive,omitempty"`
}

// Warehouse is a stock location, keyed by slug.
type Warehouse struct {
	Slug    string  `yaml:"slug" json:"slug" validate:"required,slug"`
	Name    string  `yaml:"name" json:"name" validate:"required"`
	Email   string  `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Address Address `yaml:"address" json:"address"`
}

// Address is a warehouse shipping address.
type Address struct {
	StreetAddress1 string `yaml:"streetAddress1,omitempty" json:"streetAddress1,omitempty"`
	City           string `yaml:"city,omitempty" json:"city,omitempty"`
	PostalCode     string `yaml:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country        string `yaml:"country,omitempty" json:"country,omitempty" validate:"omitempty,len=2"`
}

// Attribute is a product attribute definition, keyed by slug.
type Attribute struct {
	Slug      string           `yaml:"slug" json:"slug" validate:"required,slug"`
	Name      string           `yaml:"name" json:"name" validate:"required"`
	InputType string           `yaml:"inputType" json:"inputType" validate:"required,oneof=DROPDOWN MULTISELECT PLAIN_TEXT BOOLEAN NUMERIC SWATCH"`
	Values    []AttributeValue `yaml:"values,omitempty" json:"values,omitempty" validate:"dive"`
}

// AttributeValue is a choice for DROPDOWN/MULTISELECT/SWATCH attributes.
type AttributeValue struct {
	Slug string `yaml:"slug" json:"slug" validate:"required,slug"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

// ProductType groups products that share an attribute set, keyed by slug.
type ProductType struct {
	Slug              string   `yaml:"slug" json:"slug" validate:"required,slug"`
	Name              string   `yaml:"name" json:"name" validate:"required"`
	HasVariants       *bool    `yaml:"hasVariants,omitempty" json:"hasVariants,omitempty"`
	ProductAttributes []string `yaml:"productAttributes,omitempty" json:"productAttributes,omitempty"`
}

// Category is a node in the category tree, keyed by slug. Parent references
// another category by slug; empty means top-level.
type Category struct {
	Slug   string `yaml:"slug" json:"slug" validate:"required,slug"`
	Name   string `yaml:"name" json:"name" validate:"required"`
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// Product is a sellable product, keyed by slug.
type Product struct {
	Slug            string           `yaml:"slug" json:"slug" validate:"required,slug"`
	Name            string           `yaml:"name" json:"name" validate:"required"`
	ProductType     string           `yaml:"productType" json:"productType" validate:"required"`
	Category        string           `yaml:"category,omitempty" json:"category,omitempty"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Variants        []ProductVariant `yaml:"variants,omitempty" json:"variants,omitempty" validate:"dive"`
	ChannelListings []ChannelListing `yaml:"channelListings,omitempty" json:"channelListings,omitempty" validate:"dive"`
}

// ProductVariant is one purchasable variant of a product, keyed by SKU.
type ProductVariant struct {
	Sku  string `yaml:"sku" json:"sku" validate:"required"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// ChannelListing publishes a product in a channel with a price.
type ChannelListing struct {
	Channel     string  `yaml:"channel" json:"channel" validate:"required"`
	Price       float64 `yaml:"price,omitempty" json:"price,omitempty" validate:"gte=0"`
	IsPublished *bool   `yaml:"isPublished,omitempty" json:"isPublished,omitempty"`
}
