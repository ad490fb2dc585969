package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const productTypesQuery = `
query StoresyncProductTypes($first: Int!) {
  productTypes(first: $first) {
    edges {
      node {
        id
        slug
        name
        hasVariants
        productAttributes { slug }
      }
    }
  }
}`

const productTypeCreateMutation = `
mutation StoresyncProductTypeCreate($input: ProductTypeInput!) {
  productTypeCreate(input: $input) {
    productType { id }
    errors { field message code }
  }
}`

const productTypeUpdateMutation = `
mutation StoresyncProductTypeUpdate($id: ID!, $input: ProductTypeInput!) {
  productTypeUpdate(id: $id, input: $input) {
    productType { id }
    errors { field message code }
  }
}`

const productTypeDeleteMutation = `
mutation StoresyncProductTypeDelete($id: ID!) {
  productTypeDelete(id: $id) {
    errors { field message code }
  }
}`

// ProductTypeRepository reads and mutates product types. Attribute
// assignments are resolved from attribute slugs to remote IDs at mutation
// time via the map installed after the attribute stage.
type ProductTypeRepository struct {
	client *graphql.Client
	rc     *resilience.Context

	// attributeIDs maps attribute slug to remote ID; populated by the
	// reconciler after the attribute stage so product type mutations can
	// reference them.
	attributeIDs map[string]string
}

// SetAttributeIDs installs the slug-to-ID mapping used to resolve
// productAttributes references in mutations.
func (r *ProductTypeRepository) SetAttributeIDs(ids map[string]string) {
	r.attributeIDs = ids
}

type wireProductType struct {
	ID                string `json:"id"`
	Slug              string `json:"slug"`
	Name              string `json:"name"`
	HasVariants       bool   `json:"hasVariants"`
	ProductAttributes []struct {
		Slug string `json:"slug"`
	} `json:"productAttributes"`
}

// List fetches all product types mapped to the configuration shape.
func (r *ProductTypeRepository) List(ctx context.Context) ([]Remote[config.ProductType], error) {
	var resp struct {
		ProductTypes struct {
			Edges []struct {
				Node wireProductType `json:"node"`
			} `json:"edges"`
		} `json:"productTypes"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, productTypesQuery, map[string]interface{}{"first": pageSize}, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Remote[config.ProductType], len(resp.ProductTypes.Edges))
	for i, edge := range resp.ProductTypes.Edges {
		wpt := edge.Node
		hasVariants := wpt.HasVariants
		var attrs []string
		for _, a := range wpt.ProductAttributes {
			attrs = append(attrs, a.Slug)
		}
		out[i] = Remote[config.ProductType]{
			ID: wpt.ID,
			Entity: config.ProductType{
				Slug:              wpt.Slug,
				Name:              wpt.Name,
				HasVariants:       &hasVariants,
				ProductAttributes: attrs,
			},
		}
	}
	return out, nil
}

func (r *ProductTypeRepository) input(pt config.ProductType) map[string]interface{} {
	input := map[string]interface{}{
		"slug": pt.Slug,
		"name": pt.Name,
	}
	if pt.HasVariants != nil {
		input["hasVariants"] = *pt.HasVariants
	}
	if len(pt.ProductAttributes) > 0 {
		ids := make([]string, 0, len(pt.ProductAttributes))
		for _, slug := range pt.ProductAttributes {
			if id, ok := r.attributeIDs[slug]; ok {
				ids = append(ids, id)
			}
		}
		input["productAttributes"] = ids
	}
	return input
}

// Create creates a product type and returns its remote ID.
func (r *ProductTypeRepository) Create(ctx context.Context, pt config.ProductType) (string, error) {
	var resp struct {
		ProductTypeCreate struct {
			ProductType *struct {
				ID string `json:"id"`
			} `json:"productType"`
			Errors []payloadError `json:"errors"`
		} `json:"productTypeCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, productTypeCreateMutation,
			map[string]interface{}{"input": r.input(pt)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductTypeCreate.Errors)
	})
	if err != nil {
		return "", err
	}
	return resp.ProductTypeCreate.ProductType.ID, nil
}

// Update applies the declared product type fields to an existing type.
func (r *ProductTypeRepository) Update(ctx context.Context, id string, pt config.ProductType) error {
	var resp struct {
		ProductTypeUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"productTypeUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, productTypeUpdateMutation,
			map[string]interface{}{"id": id, "input": r.input(pt)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductTypeUpdate.Errors)
	})
}

// Delete removes a product type.
func (r *ProductTypeRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		ProductTypeDelete struct {
			Errors []payloadError `json:"errors"`
		} `json:"productTypeDelete"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, productTypeDeleteMutation,
			map[string]interface{}{"id": id}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductTypeDelete.Errors)
	})
}
