package reconciler

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"storesync/internal/config"
	"storesync/internal/diff"
	"storesync/internal/repository"
	"storesync/internal/resilience"
	"storesync/pkg/logging"
)

// Stage order. Entity families that later families reference by slug are
// reconciled first, so the referenced IDs exist by the time they are
// needed.
const (
	stageShop         = "shop"
	stageChannels     = "channels"
	stageWarehouses   = "warehouses"
	stageAttributes   = "attributes"
	stageProductTypes = "productTypes"
	stageCategories   = "categories"
	stageProducts     = "products"
)

// Manager orchestrates reconciliation of the full declared configuration
// against the remote platform, one entity family at a time.
type Manager struct {
	repos Repositories
	rc    *resilience.Context
}

// NewManager builds a Manager over a repository set and its resilience
// context.
func NewManager(repos Repositories, rc *resilience.Context) *Manager {
	return &Manager{repos: repos, rc: rc}
}

// Tracker exposes the per-stage resilience metrics collected during a run.
func (m *Manager) Tracker() *resilience.Tracker {
	return m.rc.Tracker
}

// Plan computes the pending operations for every managed family without
// mutating anything. A nil collection in the configuration means the
// family is not managed and is skipped entirely.
func (m *Manager) Plan(ctx context.Context, cfg *config.StoreConfig) (*Plan, error) {
	plan := &Plan{}

	if cfg.Shop != nil {
		sp, err := m.planShop(ctx, cfg.Shop)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.Channels != nil {
		sp, _, err := planStage(ctx, m.channelStage(), cfg.Channels)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.Warehouses != nil {
		sp, _, err := planStage(ctx, m.warehouseStage(), cfg.Warehouses)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.Attributes != nil {
		sp, _, err := planStage(ctx, m.attributeStage(), cfg.Attributes)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.ProductTypes != nil {
		sp, _, err := planStage(ctx, m.productTypeStage(), cfg.ProductTypes)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.Categories != nil {
		sp, _, err := planStage(ctx, m.categoryStage(), cfg.Categories)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	if cfg.Products != nil {
		sp, _, err := planStage(ctx, m.productStage(), cfg.Products)
		if err != nil {
			return nil, err
		}
		plan.Stages = append(plan.Stages, sp)
	}
	return plan, nil
}

// Deploy reconciles the declared configuration stage by stage. A
// validation error stops the run immediately; any other stage failure is
// recorded and the remaining stages still run, so one bad entity family
// cannot block the rest of the configuration.
func (m *Manager) Deploy(ctx context.Context, cfg *config.StoreConfig, opts DeployOptions) *Report {
	report := &Report{RunID: uuid.NewString()}
	logging.Info("reconciler", "starting deploy run %s", report.RunID)

	var errs *multierror.Error
	abort := false
	add := func(sr StageReport) {
		report.Stages = append(report.Stages, sr)
		if sr.Err == nil {
			return
		}
		if resilience.Classify(sr.Err) == resilience.KindValidation || ctx.Err() != nil {
			abort = true
		}
		errs = multierror.Append(errs, sr.Err)
	}

	if cfg.Shop != nil {
		add(m.deployShop(ctx, cfg.Shop))
	}
	if cfg.Channels != nil && !abort {
		add(runStage(ctx, m.rc, m.channelStage(), cfg.Channels, opts))
	}
	if cfg.Warehouses != nil && !abort {
		add(runStage(ctx, m.rc, m.warehouseStage(), cfg.Warehouses, opts))
	}
	if cfg.Attributes != nil && !abort {
		add(runStage(ctx, m.rc, m.attributeStage(), cfg.Attributes, opts))
	}
	if cfg.ProductTypes != nil && !abort {
		add(runStage(ctx, m.rc, m.productTypeStage(), cfg.ProductTypes, opts))
	}
	if cfg.Categories != nil && !abort {
		add(runStage(ctx, m.rc, m.categoryStage(), cfg.Categories, opts))
	}
	if cfg.Products != nil && !abort {
		// Products reference product types and categories by slug. When
		// those families are unmanaged the maps are fetched here so the
		// references still resolve.
		if cfg.ProductTypes == nil {
			if err := m.resolveProductTypeIDs(ctx); err != nil {
				errs = multierror.Append(errs, err)
				abort = true
			}
		}
		if cfg.Categories == nil && !abort {
			if err := m.resolveCategoryIDs(ctx); err != nil {
				errs = multierror.Append(errs, err)
				abort = true
			}
		}
		if !abort {
			add(runStage(ctx, m.rc, m.productStage(), cfg.Products, opts))
		}
	}

	report.Err = errs.ErrorOrNil()
	if report.Failed() {
		logging.Warn("reconciler", "deploy run %s finished with failures", report.RunID)
	} else {
		logging.Info("reconciler", "deploy run %s finished cleanly", report.RunID)
	}
	return report
}

// Pull reads the full remote state and maps it to the declarative
// configuration shape.
func (m *Manager) Pull(ctx context.Context) (*config.StoreConfig, error) {
	cfg := &config.StoreConfig{}

	shop, err := m.repos.Shop.Get(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Shop = shop

	channels, err := m.repos.Channels.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Channels = repository.Entities(channels)

	warehouses, err := m.repos.Warehouses.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Warehouses = repository.Entities(warehouses)

	attributes, err := m.repos.Attributes.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Attributes = repository.Entities(attributes)

	productTypes, err := m.repos.ProductTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.ProductTypes = repository.Entities(productTypes)

	categories, err := m.repos.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Categories = repository.Entities(categories)

	products, err := m.repos.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Products = repository.Entities(products)

	return cfg, nil
}

func (m *Manager) channelStage() stageSpec[config.Channel] {
	return stageSpec[config.Channel]{
		name:       stageChannels,
		collection: channelCollection(),
		repo:       m.repos.Channels,
	}
}

func (m *Manager) warehouseStage() stageSpec[config.Warehouse] {
	return stageSpec[config.Warehouse]{
		name:       stageWarehouses,
		collection: warehouseCollection(),
		repo:       m.repos.Warehouses,
	}
}

func (m *Manager) attributeStage() stageSpec[config.Attribute] {
	return stageSpec[config.Attribute]{
		name:       stageAttributes,
		collection: attributeCollection(),
		repo:       m.repos.Attributes,
		installIDs: m.repos.ProductTypes.SetAttributeIDs,
	}
}

func (m *Manager) productTypeStage() stageSpec[config.ProductType] {
	return stageSpec[config.ProductType]{
		name:       stageProductTypes,
		collection: productTypeCollection(),
		repo:       m.repos.ProductTypes,
		installIDs: m.repos.Products.SetProductTypeIDs,
	}
}

func (m *Manager) categoryStage() stageSpec[config.Category] {
	return stageSpec[config.Category]{
		name:       stageCategories,
		collection: categoryCollection(),
		repo:       m.repos.Categories,
		sequential: true,
		installIDs: m.repos.Products.SetCategoryIDs,
	}
}

func (m *Manager) productStage() stageSpec[config.Product] {
	return stageSpec[config.Product]{
		name:        stageProducts,
		collection:  productCollection(),
		repo:        m.repos.Products,
		batchCreate: m.repos.Products.CreateBatch,
	}
}

func (m *Manager) resolveProductTypeIDs(ctx context.Context) error {
	remotes, err := m.repos.ProductTypes.List(ctx)
	if err != nil {
		return err
	}
	m.repos.Products.SetProductTypeIDs(repository.IDsByKey(remotes, func(pt config.ProductType) string { return pt.Slug }))
	return nil
}

func (m *Manager) resolveCategoryIDs(ctx context.Context) error {
	remotes, err := m.repos.Categories.List(ctx)
	if err != nil {
		return err
	}
	m.repos.Products.SetCategoryIDs(repository.IDsByKey(remotes, func(c config.Category) string { return c.Slug }))
	return nil
}

// planShop computes drift for the singleton shop settings.
func (m *Manager) planShop(ctx context.Context, desired *config.ShopSettings) (StagePlan, error) {
	current, err := m.repos.Shop.Get(ctx)
	if err != nil {
		return StagePlan{Name: stageShop}, err
	}
	changes := shopChanges(current, desired)
	plan := StagePlan{Name: stageShop}
	if len(changes) > 0 {
		plan.Results = []diff.Result{{
			Operation:  diff.OperationUpdate,
			EntityType: "shop",
			EntityName: "shop",
			Current:    *current,
			Desired:    *desired,
			Changes:    changes,
		}}
	}
	return plan, nil
}

// deployShop applies the shop settings when they drift.
func (m *Manager) deployShop(ctx context.Context, desired *config.ShopSettings) StageReport {
	report := StageReport{Name: stageShop}
	if err := m.rc.Tracker.StartStage(stageShop); err != nil {
		report.Err = err
		return report
	}
	defer func() {
		if metrics, ok := m.rc.Tracker.EndStage(); ok {
			report.Metrics = metrics
		}
	}()

	plan, err := m.planShop(ctx, desired)
	if err != nil {
		report.Err = err
		return report
	}
	if len(plan.Results) == 0 {
		report.Skipped = 1
		return report
	}
	if err := m.repos.Shop.Update(ctx, desired); err != nil {
		logging.Warn("reconciler", "update shop settings failed: %v", err)
		report.Failed = 1
		report.Err = err
		return report
	}
	report.Updated = 1
	return report
}
