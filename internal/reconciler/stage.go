package reconciler

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"storesync/internal/diff"
	"storesync/internal/repository"
	"storesync/internal/resilience"
	"storesync/pkg/logging"
)

// stageSpec binds one entity family's collection, repository and apply
// strategy together for the generic stage runner.
type stageSpec[T any] struct {
	name       string
	collection diff.Collection[T]
	repo       Repository[T]

	// sequential forces ordered creates. Category parents must exist
	// before their children, so that stage cannot fan out.
	sequential bool

	// batchCreate, when set, routes creates through the chunked batch
	// processor instead of per-item mutations.
	batchCreate resilience.BatchFunc[T, string]

	// installIDs, when set, receives the slug-to-ID map covering both
	// pre-existing and newly created entities once the stage completes.
	// Later stages use it to resolve declared references.
	installIDs func(map[string]string)
}

// planStage lists the remote family and diffs it against the declaration.
func planStage[T any](ctx context.Context, spec stageSpec[T], desired []T) (StagePlan, []repository.Remote[T], error) {
	remotes, err := spec.repo.List(ctx)
	if err != nil {
		return StagePlan{Name: spec.name}, nil, err
	}
	results, err := spec.collection.Diff(desired, repository.Entities(remotes))
	if err != nil {
		return StagePlan{Name: spec.name}, nil, err
	}
	return StagePlan{Name: spec.name, Results: results}, remotes, nil
}

// runStage plans and applies one family. Creates and updates run first
// (concurrently unless the stage is sequential), deletions only in
// destructive mode and only after the additive operations settled. A
// failed item never aborts its siblings; failures are counted and
// aggregated into the report error.
func runStage[T any](ctx context.Context, rc *resilience.Context, spec stageSpec[T], desired []T, opts DeployOptions) StageReport {
	report := StageReport{Name: spec.name}

	if err := rc.Tracker.StartStage(spec.name); err != nil {
		report.Err = err
		return report
	}
	defer func() {
		if metrics, ok := rc.Tracker.EndStage(); ok {
			report.Metrics = metrics
		}
	}()

	plan, remotes, err := planStage(ctx, spec, desired)
	if err != nil {
		report.Err = err
		return report
	}
	report.Skipped = len(desired) - pendingDesired(plan.Results)

	ids := repository.IDsByKey(remotes, spec.collection.Key)

	var creates []T
	var updates []diff.Result
	var deletes []diff.Result
	for _, r := range plan.Results {
		switch r.Operation {
		case diff.OperationCreate:
			creates = append(creates, r.Desired.(T))
		case diff.OperationUpdate:
			updates = append(updates, r)
		case diff.OperationDelete:
			deletes = append(deletes, r)
		}
	}

	var errs *multierror.Error
	var mu sync.Mutex
	record := func(err error) {
		mu.Lock()
		errs = multierror.Append(errs, err)
		report.Failed++
		mu.Unlock()
	}

	switch {
	case spec.batchCreate != nil && len(creates) > 0:
		result, err := resilience.ProcessInChunks(ctx, creates, spec.batchCreate, rc.ChunkOptions())
		if err != nil {
			report.Err = multierror.Append(errs, err).ErrorOrNil()
			return report
		}
		for _, s := range result.Successes {
			ids[spec.collection.Key(s.Item)] = s.Result
			report.Created++
		}
		for _, f := range result.Failures {
			logging.Warn("reconciler", "create %s %q failed: %v", spec.name, spec.collection.Key(f.Item), f.Err)
			record(f.Err)
		}
	case spec.sequential:
		for _, entity := range creates {
			id, err := spec.repo.Create(ctx, entity)
			if err != nil {
				logging.Warn("reconciler", "create %s %q failed: %v", spec.name, spec.collection.Key(entity), err)
				record(err)
				continue
			}
			ids[spec.collection.Key(entity)] = id
			report.Created++
		}
	default:
		g, gctx := errgroup.WithContext(ctx)
		for _, entity := range creates {
			entity := entity
			g.Go(func() error {
				id, err := spec.repo.Create(gctx, entity)
				if err != nil {
					logging.Warn("reconciler", "create %s %q failed: %v", spec.name, spec.collection.Key(entity), err)
					record(err)
					return nil
				}
				mu.Lock()
				ids[spec.collection.Key(entity)] = id
				report.Created++
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range updates {
		entity := r.Desired.(T)
		key := spec.collection.Key(entity)
		id, ok := ids[key]
		g.Go(func() error {
			if !ok {
				record(resilience.NewValidationError("no remote ID for " + spec.name + " " + key))
				return nil
			}
			if err := spec.repo.Update(gctx, id, entity); err != nil {
				logging.Warn("reconciler", "update %s %q failed: %v", spec.name, key, err)
				record(err)
				return nil
			}
			mu.Lock()
			report.Updated++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if opts.Destructive {
		for _, r := range deletes {
			entity := r.Current.(T)
			key := spec.collection.Key(entity)
			id, ok := ids[key]
			if !ok {
				continue
			}
			if err := spec.repo.Delete(ctx, id); err != nil {
				logging.Warn("reconciler", "delete %s %q failed: %v", spec.name, key, err)
				record(err)
				continue
			}
			report.Deleted++
		}
	}

	if spec.installIDs != nil {
		spec.installIDs(ids)
	}
	report.Err = errs.ErrorOrNil()
	return report
}

// pendingDesired counts plan results that correspond to a declared entity.
func pendingDesired(results []diff.Result) int {
	n := 0
	for _, r := range results {
		if r.Operation != diff.OperationDelete {
			n++
		}
	}
	return n
}
