package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

// gqlRequest mirrors the wire shape the client posts.
type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newTestSet(t *testing.T, handler http.HandlerFunc) *Set {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := graphql.NewClient(server.URL, "test-token",
		graphql.WithHTTPClient(server.Client()),
	)
	rc := resilience.NewContext(resilience.Options{Concurrency: 1})
	return NewSet(client, rc)
}

func TestChannelRepositoryList(t *testing.T) {
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"channels": []map[string]interface{}{
					{
						"id":             "Q2hhbm5lbDox",
						"slug":           "default-channel",
						"name":           "Default",
						"currencyCode":   "USD",
						"defaultCountry": map[string]string{"code": "US"},
						"isActive":       true,
					},
				},
			},
		})
	})

	remotes, err := set.Channels.List(context.Background())
	require.NoError(t, err)
	require.Len(t, remotes, 1)
	assert.Equal(t, "Q2hhbm5lbDox", remotes[0].ID)
	assert.Equal(t, "default-channel", remotes[0].Entity.Slug)
	assert.Equal(t, "USD", remotes[0].Entity.CurrencyCode)
	assert.Equal(t, "US", remotes[0].Entity.DefaultCountry)
	require.NotNil(t, remotes[0].Entity.IsActive)
	assert.True(t, *remotes[0].Entity.IsActive)
}

func TestChannelRepositoryCreateReturnsID(t *testing.T) {
	var got gqlRequest
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"channelCreate": map[string]interface{}{
					"channel": map[string]string{"id": "Q2hhbm5lbDoy"},
					"errors":  []interface{}{},
				},
			},
		})
	})

	id, err := set.Channels.Create(context.Background(), config.Channel{
		Slug:           "eu",
		Name:           "Europe",
		CurrencyCode:   "EUR",
		DefaultCountry: "DE",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q2hhbm5lbDoy", id)

	input, ok := got.Variables["input"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "eu", input["slug"])
	assert.Equal(t, "EUR", input["currencyCode"])
}

func TestChannelRepositoryCreatePayloadError(t *testing.T) {
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"channelCreate": map[string]interface{}{
					"channel": nil,
					"errors": []map[string]string{
						{"field": "slug", "message": "Channel with this slug already exists.", "code": "UNIQUE"},
					},
				},
			},
		})
	})

	_, err := set.Channels.Create(context.Background(), config.Channel{Slug: "eu"})
	require.Error(t, err)
	var gqlErrs graphql.GraphQLErrors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Equal(t, "UNIQUE", gqlErrs[0].Code)
	assert.Equal(t, []string{"slug"}, gqlErrs[0].Path)
}

func TestShopRepositoryUpdateOmitsUnsetFields(t *testing.T) {
	var got gqlRequest
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"shopSettingsUpdate": map[string]interface{}{
					"shop":   map[string]string{"name": "Shop"},
					"errors": []interface{}{},
				},
			},
		})
	})

	track := true
	err := set.Shop.Update(context.Background(), &config.ShopSettings{
		Description:             "A store",
		TrackInventoryByDefault: &track,
	})
	require.NoError(t, err)

	input, ok := got.Variables["input"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A store", input["description"])
	assert.Equal(t, true, input["trackInventoryByDefault"])
	assert.NotContains(t, input, "defaultMailSenderName")
	assert.NotContains(t, input, "defaultMailSenderAddress")
}

func TestProductRepositoryListPaginates(t *testing.T) {
	page := 0
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		page++
		switch page {
		case 1:
			assert.NotContains(t, req.Variables, "after")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"products": map[string]interface{}{
						"pageInfo": map[string]interface{}{"hasNextPage": true, "endCursor": "cursor-1"},
						"edges": []map[string]interface{}{
							{"node": map[string]interface{}{
								"id":          "UHJvZHVjdDox",
								"slug":        "tee",
								"name":        "Tee",
								"productType": map[string]string{"slug": "apparel"},
							}},
						},
					},
				},
			})
		default:
			assert.Equal(t, "cursor-1", req.Variables["after"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"products": map[string]interface{}{
						"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
						"edges": []map[string]interface{}{
							{"node": map[string]interface{}{
								"id":          "UHJvZHVjdDoy",
								"slug":        "mug",
								"name":        "Mug",
								"productType": map[string]string{"slug": "ceramics"},
								"category":    map[string]string{"slug": "kitchen"},
								"variants": []map[string]string{
									{"sku": "MUG-1", "name": "White"},
								},
							}},
						},
					},
				},
			})
		}
	})

	remotes, err := set.Products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, remotes, 2)
	assert.Equal(t, 2, page)
	assert.Equal(t, "tee", remotes[0].Entity.Slug)
	assert.Empty(t, remotes[0].Entity.Category)
	assert.Equal(t, "kitchen", remotes[1].Entity.Category)
	require.Len(t, remotes[1].Entity.Variants, 1)
	assert.Equal(t, "MUG-1", remotes[1].Entity.Variants[0].Sku)
}

func TestProductRepositoryCreateBatch(t *testing.T) {
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		products, ok := req.Variables["products"].([]interface{})
		require.True(t, ok)
		results := make([]map[string]interface{}, len(products))
		for i := range products {
			results[i] = map[string]interface{}{
				"product": map[string]interface{}{"id": "UHJvZHVjdDoxMA==", "slug": "p"},
				"errors":  []interface{}{},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"productBulkCreate": map[string]interface{}{
					"results": results,
					"errors":  []interface{}{},
				},
			},
		})
	})

	set.Products.SetProductTypeIDs(map[string]string{"apparel": "UHQ6MQ=="})
	ids, err := set.Products.CreateBatch(context.Background(), []config.Product{
		{Slug: "a", Name: "A", ProductType: "apparel"},
		{Slug: "b", Name: "B", ProductType: "apparel"},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestProductRepositoryCreateBatchItemError(t *testing.T) {
	set := newTestSet(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"productBulkCreate": map[string]interface{}{
					"results": []map[string]interface{}{
						{"product": nil, "errors": []map[string]string{
							{"field": "slug", "message": "duplicate slug", "code": "UNIQUE"},
						}},
					},
					"errors": []interface{}{},
				},
			},
		})
	})

	_, err := set.Products.CreateBatch(context.Background(), []config.Product{
		{Slug: "a", Name: "A", ProductType: "apparel"},
	})
	require.Error(t, err)
	var gqlErrs graphql.GraphQLErrors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Equal(t, "UNIQUE", gqlErrs[0].Code)
}

func TestEntitiesAndIDsByKey(t *testing.T) {
	remotes := []Remote[config.Channel]{
		{ID: "1", Entity: config.Channel{Slug: "a"}},
		{ID: "2", Entity: config.Channel{Slug: "b"}},
	}
	entities := Entities(remotes)
	require.Len(t, entities, 2)
	assert.Equal(t, "a", entities[0].Slug)

	ids := IDsByKey(remotes, func(c config.Channel) string { return c.Slug })
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ids)
}
