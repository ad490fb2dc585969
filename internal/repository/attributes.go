package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const attributesQuery = `
query StoresyncAttributes($first: Int!) {
  attributes(first: $first) {
    edges {
      node {
        id
        slug
        name
        inputType
        choices(first: 100) {
          edges {
            node { slug name }
          }
        }
      }
    }
  }
}`

const attributeCreateMutation = `
mutation StoresyncAttributeCreate($input: AttributeCreateInput!) {
  attributeCreate(input: $input) {
    attribute { id }
    errors { field message code }
  }
}`

const attributeUpdateMutation = `
mutation StoresyncAttributeUpdate($id: ID!, $input: AttributeUpdateInput!) {
  attributeUpdate(id: $id, input: $input) {
    attribute { id }
    errors { field message code }
  }
}`

const attributeDeleteMutation = `
mutation StoresyncAttributeDelete($id: ID!) {
  attributeDelete(id: $id) {
    errors { field message code }
  }
}`

// AttributeRepository reads and mutates product attribute definitions.
type AttributeRepository struct {
	client *graphql.Client
	rc     *resilience.Context
}

type wireAttribute struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	InputType string `json:"inputType"`
	Choices   struct {
		Edges []struct {
			Node struct {
				Slug string `json:"slug"`
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"choices"`
}

// List fetches all attributes mapped to the configuration shape.
func (r *AttributeRepository) List(ctx context.Context) ([]Remote[config.Attribute], error) {
	var resp struct {
		Attributes struct {
			Edges []struct {
				Node wireAttribute `json:"node"`
			} `json:"edges"`
		} `json:"attributes"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, attributesQuery, map[string]interface{}{"first": pageSize}, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Remote[config.Attribute], len(resp.Attributes.Edges))
	for i, edge := range resp.Attributes.Edges {
		wa := edge.Node
		var values []config.AttributeValue
		for _, choice := range wa.Choices.Edges {
			values = append(values, config.AttributeValue{
				Slug: choice.Node.Slug,
				Name: choice.Node.Name,
			})
		}
		out[i] = Remote[config.Attribute]{
			ID: wa.ID,
			Entity: config.Attribute{
				Slug:      wa.Slug,
				Name:      wa.Name,
				InputType: wa.InputType,
				Values:    values,
			},
		}
	}
	return out, nil
}

func attributeInput(a config.Attribute) map[string]interface{} {
	input := map[string]interface{}{
		"slug":      a.Slug,
		"name":      a.Name,
		"inputType": a.InputType,
	}
	if len(a.Values) > 0 {
		values := make([]map[string]interface{}, len(a.Values))
		for i, v := range a.Values {
			values[i] = map[string]interface{}{"name": v.Name}
		}
		input["values"] = values
	}
	return input
}

// Create creates an attribute and returns its remote ID.
func (r *AttributeRepository) Create(ctx context.Context, a config.Attribute) (string, error) {
	var resp struct {
		AttributeCreate struct {
			Attribute *struct {
				ID string `json:"id"`
			} `json:"attribute"`
			Errors []payloadError `json:"errors"`
		} `json:"attributeCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, attributeCreateMutation,
			map[string]interface{}{"input": attributeInput(a)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.AttributeCreate.Errors)
	})
	if err != nil {
		return "", err
	}
	return resp.AttributeCreate.Attribute.ID, nil
}

// Update applies the declared attribute fields to an existing attribute.
// The input type is immutable on the platform, so it is not sent here.
func (r *AttributeRepository) Update(ctx context.Context, id string, a config.Attribute) error {
	input := map[string]interface{}{
		"slug": a.Slug,
		"name": a.Name,
	}
	var resp struct {
		AttributeUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"attributeUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, attributeUpdateMutation,
			map[string]interface{}{"id": id, "input": input}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.AttributeUpdate.Errors)
	})
}

// Delete removes an attribute.
func (r *AttributeRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		AttributeDelete struct {
			Errors []payloadError `json:"errors"`
		} `json:"attributeDelete"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, attributeDeleteMutation,
			map[string]interface{}{"id": id}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.AttributeDelete.Errors)
	})
}
