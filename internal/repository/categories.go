package repository

import (
	"context"
	"sync"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const categoriesQuery = `
query StoresyncCategories($first: Int!) {
  categories(first: $first) {
    edges {
      node {
        id
        slug
        name
        parent { slug }
      }
    }
  }
}`

const categoryCreateMutation = `
mutation StoresyncCategoryCreate($input: CategoryInput!, $parent: ID) {
  categoryCreate(input: $input, parent: $parent) {
    category { id }
    errors { field message code }
  }
}`

const categoryUpdateMutation = `
mutation StoresyncCategoryUpdate($id: ID!, $input: CategoryInput!) {
  categoryUpdate(id: $id, input: $input) {
    category { id }
    errors { field message code }
  }
}`

const categoryDeleteMutation = `
mutation StoresyncCategoryDelete($id: ID!) {
  categoryDelete(id: $id) {
    errors { field message code }
  }
}`

// CategoryRepository reads and mutates the category tree. Parent references
// are declared by slug and resolved to remote IDs at mutation time; the
// reconciler deploys categories in desired order, so a parent declared
// earlier in the document is created before its children reference it.
type CategoryRepository struct {
	client *graphql.Client
	rc     *resilience.Context

	// mu guards knownIDs; creates may be dispatched concurrently.
	mu sync.Mutex
	// knownIDs maps category slug to remote ID, seeded from List and
	// extended by Create.
	knownIDs map[string]string
}

type wireCategory struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Parent *struct {
		Slug string `json:"slug"`
	} `json:"parent"`
}

// List fetches all categories mapped to the configuration shape.
func (r *CategoryRepository) List(ctx context.Context) ([]Remote[config.Category], error) {
	var resp struct {
		Categories struct {
			Edges []struct {
				Node wireCategory `json:"node"`
			} `json:"edges"`
		} `json:"categories"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, categoriesQuery, map[string]interface{}{"first": pageSize}, &resp)
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.knownIDs = make(map[string]string, len(resp.Categories.Edges))
	r.mu.Unlock()
	out := make([]Remote[config.Category], len(resp.Categories.Edges))
	for i, edge := range resp.Categories.Edges {
		wc := edge.Node
		r.mu.Lock()
		r.knownIDs[wc.Slug] = wc.ID
		r.mu.Unlock()
		parent := ""
		if wc.Parent != nil {
			parent = wc.Parent.Slug
		}
		out[i] = Remote[config.Category]{
			ID: wc.ID,
			Entity: config.Category{
				Slug:   wc.Slug,
				Name:   wc.Name,
				Parent: parent,
			},
		}
	}
	return out, nil
}

// Create creates a category (under its declared parent, when any) and
// returns its remote ID.
func (r *CategoryRepository) Create(ctx context.Context, c config.Category) (string, error) {
	variables := map[string]interface{}{
		"input": map[string]interface{}{"slug": c.Slug, "name": c.Name},
	}
	if c.Parent != "" {
		r.mu.Lock()
		parentID, ok := r.knownIDs[c.Parent]
		r.mu.Unlock()
		if ok {
			variables["parent"] = parentID
		}
	}

	var resp struct {
		CategoryCreate struct {
			Category *struct {
				ID string `json:"id"`
			} `json:"category"`
			Errors []payloadError `json:"errors"`
		} `json:"categoryCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, categoryCreateMutation, variables, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.CategoryCreate.Errors)
	})
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.knownIDs == nil {
		r.knownIDs = make(map[string]string)
	}
	r.knownIDs[c.Slug] = resp.CategoryCreate.Category.ID
	r.mu.Unlock()
	return resp.CategoryCreate.Category.ID, nil
}

// Update applies the declared category fields to an existing category.
// Re-parenting is not supported by the platform's update mutation.
func (r *CategoryRepository) Update(ctx context.Context, id string, c config.Category) error {
	var resp struct {
		CategoryUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"categoryUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, categoryUpdateMutation,
			map[string]interface{}{
				"id":    id,
				"input": map[string]interface{}{"slug": c.Slug, "name": c.Name},
			}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.CategoryUpdate.Errors)
	})
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		CategoryDelete struct {
			Errors []payloadError `json:"errors"`
		} `json:"categoryDelete"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, categoryDeleteMutation,
			map[string]interface{}{"id": id}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.CategoryDelete.Errors)
	})
}
