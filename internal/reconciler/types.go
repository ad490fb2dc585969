package reconciler

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/diff"
	"storesync/internal/repository"
	"storesync/internal/resilience"
)

// Repository is the entity-family contract the reconciler drives. All
// GraphQL-backed repositories except the singleton shop satisfy it.
type Repository[T any] interface {
	List(ctx context.Context) ([]repository.Remote[T], error)
	Create(ctx context.Context, entity T) (string, error)
	Update(ctx context.Context, id string, entity T) error
	Delete(ctx context.Context, id string) error
}

// ShopStore is the contract for the singleton shop settings.
type ShopStore interface {
	Get(ctx context.Context) (*config.ShopSettings, error)
	Update(ctx context.Context, s *config.ShopSettings) error
}

// ProductTypeStore extends the family contract with attribute reference
// resolution.
type ProductTypeStore interface {
	Repository[config.ProductType]
	SetAttributeIDs(ids map[string]string)
}

// ProductStore extends the family contract with bulk creation and
// reference resolution for product types and categories.
type ProductStore interface {
	Repository[config.Product]
	CreateBatch(ctx context.Context, chunk []config.Product) ([]string, error)
	SetProductTypeIDs(ids map[string]string)
	SetCategoryIDs(ids map[string]string)
}

// Repositories bundles the per-family stores the Manager drives.
type Repositories struct {
	Shop         ShopStore
	Channels     Repository[config.Channel]
	Warehouses   Repository[config.Warehouse]
	Attributes   Repository[config.Attribute]
	ProductTypes ProductTypeStore
	Categories   Repository[config.Category]
	Products     ProductStore
}

// FromSet adapts the GraphQL-backed repository set.
func FromSet(set *repository.Set) Repositories {
	return Repositories{
		Shop:         set.Shop,
		Channels:     set.Channels,
		Warehouses:   set.Warehouses,
		Attributes:   set.Attributes,
		ProductTypes: set.ProductTypes,
		Categories:   set.Categories,
		Products:     set.Products,
	}
}

// Plan is the outcome of comparing the full declared configuration against
// the remote state, grouped per entity family in deploy order.
type Plan struct {
	Stages []StagePlan `json:"stages"`
}

// StagePlan holds one family's pending operations.
type StagePlan struct {
	Name    string        `json:"name"`
	Results []diff.Result `json:"results"`
}

// Summary flattens the plan into one aggregate across all stages.
func (p *Plan) Summary() diff.Summary {
	var all []diff.Result
	for _, s := range p.Stages {
		all = append(all, s.Results...)
	}
	return diff.Summarize(all)
}

// InSync reports whether no stage has pending operations.
func (p *Plan) InSync() bool {
	for _, s := range p.Stages {
		if len(s.Results) > 0 {
			return false
		}
	}
	return true
}

// DeployOptions controls a deploy run.
type DeployOptions struct {
	// Destructive enables deletion of remote entities absent from the
	// declared configuration. Off by default; deploys are additive.
	Destructive bool
}

// StageReport is the applied outcome of one family's stage.
type StageReport struct {
	Name    string                  `json:"name"`
	Created int                     `json:"created"`
	Updated int                     `json:"updated"`
	Deleted int                     `json:"deleted"`
	Skipped int                     `json:"skipped"`
	Failed  int                     `json:"failed"`
	Err     error                   `json:"-"`
	Metrics resilience.StageMetrics `json:"metrics"`
}

// Report is the outcome of a full deploy run.
type Report struct {
	RunID  string        `json:"runId"`
	Stages []StageReport `json:"stages"`
	Err    error         `json:"-"`
}

// Failed reports whether any stage recorded a failure.
func (r *Report) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, s := range r.Stages {
		if s.Failed > 0 || s.Err != nil {
			return true
		}
	}
	return false
}
