package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const warehousesQuery = `
query StoresyncWarehouses($first: Int!) {
  warehouses(first: $first) {
    edges {
      node {
        id
        slug
        name
        email
        address {
          streetAddress1
          city
          postalCode
          country { code }
        }
      }
    }
  }
}`

const warehouseCreateMutation = `
mutation StoresyncWarehouseCreate($input: WarehouseCreateInput!) {
  createWarehouse(input: $input) {
    warehouse { id }
    errors { field message code }
  }
}`

const warehouseUpdateMutation = `
mutation StoresyncWarehouseUpdate($id: ID!, $input: WarehouseUpdateInput!) {
  updateWarehouse(id: $id, input: $input) {
    warehouse { id }
    errors { field message code }
  }
}`

const warehouseDeleteMutation = `
mutation StoresyncWarehouseDelete($id: ID!) {
  deleteWarehouse(id: $id) {
    errors { field message code }
  }
}`

// pageSize bounds relay-style list queries. Store configurations are small;
// a single page is plenty.
const pageSize = 100

// WarehouseRepository reads and mutates stock locations.
type WarehouseRepository struct {
	client *graphql.Client
	rc     *resilience.Context
}

type wireWarehouse struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address struct {
		StreetAddress1 string `json:"streetAddress1"`
		City           string `json:"city"`
		PostalCode     string `json:"postalCode"`
		Country        struct {
			Code string `json:"code"`
		} `json:"country"`
	} `json:"address"`
}

// List fetches all warehouses mapped to the configuration shape.
func (r *WarehouseRepository) List(ctx context.Context) ([]Remote[config.Warehouse], error) {
	var resp struct {
		Warehouses struct {
			Edges []struct {
				Node wireWarehouse `json:"node"`
			} `json:"edges"`
		} `json:"warehouses"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, warehousesQuery, map[string]interface{}{"first": pageSize}, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Remote[config.Warehouse], len(resp.Warehouses.Edges))
	for i, edge := range resp.Warehouses.Edges {
		ww := edge.Node
		out[i] = Remote[config.Warehouse]{
			ID: ww.ID,
			Entity: config.Warehouse{
				Slug:  ww.Slug,
				Name:  ww.Name,
				Email: ww.Email,
				Address: config.Address{
					StreetAddress1: ww.Address.StreetAddress1,
					City:           ww.Address.City,
					PostalCode:     ww.Address.PostalCode,
					Country:        ww.Address.Country.Code,
				},
			},
		}
	}
	return out, nil
}

func warehouseInput(w config.Warehouse) map[string]interface{} {
	address := map[string]interface{}{}
	if w.Address.StreetAddress1 != "" {
		address["streetAddress1"] = w.Address.StreetAddress1
	}
	if w.Address.City != "" {
		address["city"] = w.Address.City
	}
	if w.Address.PostalCode != "" {
		address["postalCode"] = w.Address.PostalCode
	}
	if w.Address.Country != "" {
		address["country"] = w.Address.Country
	}

	input := map[string]interface{}{
		"slug":    w.Slug,
		"name":    w.Name,
		"address": address,
	}
	if w.Email != "" {
		input["email"] = w.Email
	}
	return input
}

// Create creates a warehouse and returns its remote ID.
func (r *WarehouseRepository) Create(ctx context.Context, w config.Warehouse) (string, error) {
	var resp struct {
		CreateWarehouse struct {
			Warehouse *struct {
				ID string `json:"id"`
			} `json:"warehouse"`
			Errors []payloadError `json:"errors"`
		} `json:"createWarehouse"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, warehouseCreateMutation,
			map[string]interface{}{"input": warehouseInput(w)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.CreateWarehouse.Errors)
	})
	if err != nil {
		return "", err
	}
	return resp.CreateWarehouse.Warehouse.ID, nil
}

// Update applies the declared warehouse fields to an existing warehouse.
func (r *WarehouseRepository) Update(ctx context.Context, id string, w config.Warehouse) error {
	var resp struct {
		UpdateWarehouse struct {
			Errors []payloadError `json:"errors"`
		} `json:"updateWarehouse"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, warehouseUpdateMutation,
			map[string]interface{}{"id": id, "input": warehouseInput(w)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.UpdateWarehouse.Errors)
	})
}

// Delete removes a warehouse.
func (r *WarehouseRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		DeleteWarehouse struct {
			Errors []payloadError `json:"errors"`
		} `json:"deleteWarehouse"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, warehouseDeleteMutation,
			map[string]interface{}{"id": id}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.DeleteWarehouse.Errors)
	})
}
