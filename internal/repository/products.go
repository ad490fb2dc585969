package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const productsQuery = `
query StoresyncProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        slug
        name
        description
        productType { slug }
        category { slug }
        variants { sku name }
        channelListings {
          channel { slug }
          isPublished
          price
        }
      }
    }
  }
}`

const productCreateMutation = `
mutation StoresyncProductCreate($input: ProductCreateInput!) {
  productCreate(input: $input) {
    product { id slug }
    errors { field message code }
  }
}`

const productBulkCreateMutation = `
mutation StoresyncProductBulkCreate($products: [ProductBulkCreateInput!]!) {
  productBulkCreate(products: $products) {
    results {
      product { id slug }
      errors { field message code }
    }
    errors { field message code }
  }
}`

const productUpdateMutation = `
mutation StoresyncProductUpdate($id: ID!, $input: ProductInput!) {
  productUpdate(id: $id, input: $input) {
    product { id slug }
    errors { field message code }
  }
}`

const productDeleteMutation = `
mutation StoresyncProductDelete($id: ID!) {
  productDelete(id: $id) {
    errors { field message code }
  }
}`

// ProductRepository manages products, the largest entity family. In
// addition to per-item mutations it offers CreateBatch, which the deploy
// path feeds through the chunked batch processor.
type ProductRepository struct {
	client *graphql.Client
	rc     *resilience.Context

	// productTypeIDs and categoryIDs map slugs to remote IDs; installed
	// after the respective stages complete so product inputs can resolve
	// their references.
	productTypeIDs map[string]string
	categoryIDs    map[string]string
}

// SetProductTypeIDs installs the slug-to-ID mapping used to resolve a
// product's declared productType.
func (r *ProductRepository) SetProductTypeIDs(ids map[string]string) {
	r.productTypeIDs = ids
}

// SetCategoryIDs installs the slug-to-ID mapping used to resolve a
// product's declared category.
func (r *ProductRepository) SetCategoryIDs(ids map[string]string) {
	r.categoryIDs = ids
}

type wireProduct struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProductType struct {
		Slug string `json:"slug"`
	} `json:"productType"`
	Category *struct {
		Slug string `json:"slug"`
	} `json:"category"`
	Variants []struct {
		Sku  string `json:"sku"`
		Name string `json:"name"`
	} `json:"variants"`
	ChannelListings []struct {
		Channel struct {
			Slug string `json:"slug"`
		} `json:"channel"`
		IsPublished *bool   `json:"isPublished"`
		Price       float64 `json:"price"`
	} `json:"channelListings"`
}

func (w wireProduct) toConfig() config.Product {
	p := config.Product{
		Slug:        w.Slug,
		Name:        w.Name,
		Description: w.Description,
		ProductType: w.ProductType.Slug,
	}
	if w.Category != nil {
		p.Category = w.Category.Slug
	}
	for _, v := range w.Variants {
		p.Variants = append(p.Variants, config.ProductVariant{Sku: v.Sku, Name: v.Name})
	}
	for _, l := range w.ChannelListings {
		p.ChannelListings = append(p.ChannelListings, config.ChannelListing{
			Channel:     l.Channel.Slug,
			Price:       l.Price,
			IsPublished: l.IsPublished,
		})
	}
	return p
}

// List fetches all products, following relay pagination.
func (r *ProductRepository) List(ctx context.Context) ([]Remote[config.Product], error) {
	var out []Remote[config.Product]
	var after interface{}
	for {
		var resp struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node wireProduct `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		}
		variables := map[string]interface{}{"first": pageSize}
		if after != nil {
			variables["after"] = after
		}
		err := r.rc.Execute(ctx, func(ctx context.Context) error {
			return r.client.Do(ctx, productsQuery, variables, &resp)
		})
		if err != nil {
			return nil, err
		}
		for _, edge := range resp.Products.Edges {
			out = append(out, Remote[config.Product]{ID: edge.Node.ID, Entity: edge.Node.toConfig()})
		}
		if !resp.Products.PageInfo.HasNextPage {
			return out, nil
		}
		after = resp.Products.PageInfo.EndCursor
	}
}

func (r *ProductRepository) productInput(p config.Product) map[string]interface{} {
	input := map[string]interface{}{
		"slug": p.Slug,
		"name": p.Name,
	}
	if p.Description != "" {
		input["description"] = p.Description
	}
	if id, ok := r.productTypeIDs[p.ProductType]; ok {
		input["productType"] = id
	}
	if p.Category != "" {
		if id, ok := r.categoryIDs[p.Category]; ok {
			input["category"] = id
		}
	}
	if len(p.Variants) > 0 {
		variants := make([]map[string]interface{}, len(p.Variants))
		for i, v := range p.Variants {
			variant := map[string]interface{}{"sku": v.Sku}
			if v.Name != "" {
				variant["name"] = v.Name
			}
			variants[i] = variant
		}
		input["variants"] = variants
	}
	if len(p.ChannelListings) > 0 {
		listings := make([]map[string]interface{}, len(p.ChannelListings))
		for i, l := range p.ChannelListings {
			listing := map[string]interface{}{
				"channel": l.Channel,
				"price":   l.Price,
			}
			if l.IsPublished != nil {
				listing["isPublished"] = *l.IsPublished
			}
			listings[i] = listing
		}
		input["channelListings"] = listings
	}
	return input
}

// Create registers a single product and returns its remote ID.
func (r *ProductRepository) Create(ctx context.Context, p config.Product) (string, error) {
	var resp struct {
		ProductCreate struct {
			Product struct {
				ID string `json:"id"`
			} `json:"product"`
			Errors []payloadError `json:"errors"`
		} `json:"productCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		variables := map[string]interface{}{"input": r.productInput(p)}
		if err := r.client.Do(ctx, productCreateMutation, variables, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductCreate.Errors)
	})
	if err != nil {
		return "", err
	}
	return resp.ProductCreate.Product.ID, nil
}

// CreateBatch registers one chunk of products in a single bulk mutation
// and returns the new IDs in input order. A per-item error surfaces as a
// GraphQLErrors value so the caller's failure isolation can attribute it;
// the first such error fails the whole chunk, matching the platform's
// all-or-nothing bulk semantics.
func (r *ProductRepository) CreateBatch(ctx context.Context, chunk []config.Product) ([]string, error) {
	inputs := make([]map[string]interface{}, len(chunk))
	for i, p := range chunk {
		inputs[i] = r.productInput(p)
	}
	var resp struct {
		ProductBulkCreate struct {
			Results []struct {
				Product *struct {
					ID string `json:"id"`
				} `json:"product"`
				Errors []payloadError `json:"errors"`
			} `json:"results"`
			Errors []payloadError `json:"errors"`
		} `json:"productBulkCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		variables := map[string]interface{}{"products": inputs}
		if err := r.client.Do(ctx, productBulkCreateMutation, variables, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductBulkCreate.Errors)
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(resp.ProductBulkCreate.Results))
	for i, res := range resp.ProductBulkCreate.Results {
		if err := payloadErrorsToError(res.Errors); err != nil {
			return nil, err
		}
		if res.Product != nil {
			ids[i] = res.Product.ID
		}
	}
	return ids, nil
}

// Update pushes the declared state of an existing product.
func (r *ProductRepository) Update(ctx context.Context, id string, p config.Product) error {
	var resp struct {
		ProductUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"productUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		variables := map[string]interface{}{"id": id, "input": r.productInput(p)}
		if err := r.client.Do(ctx, productUpdateMutation, variables, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductUpdate.Errors)
	})
}

// Delete removes a product by remote ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		ProductDelete struct {
			Errors []payloadError `json:"errors"`
		} `json:"productDelete"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		variables := map[string]interface{}{"id": id}
		if err := r.client.Do(ctx, productDeleteMutation, variables, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ProductDelete.Errors)
	})
}
