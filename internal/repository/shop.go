package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const shopQuery = `
query StoresyncShop {
  shop {
    description
    defaultMailSenderName
    defaultMailSenderAddress
    trackInventoryByDefault
  }
}`

const shopSettingsUpdateMutation = `
mutation StoresyncShopSettingsUpdate($input: ShopSettingsInput!) {
  shopSettingsUpdate(input: $input) {
    shop { name }
    errors { field message code }
  }
}`

// ShopRepository reads and updates the singleton shop settings. The shop
// has no identity of its own, so it exposes Get and Update only.
type ShopRepository struct {
	client *graphql.Client
	rc     *resilience.Context
}

type wireShop struct {
	Description              string `json:"description"`
	DefaultMailSenderName    string `json:"defaultMailSenderName"`
	DefaultMailSenderAddress string `json:"defaultMailSenderAddress"`
	TrackInventoryByDefault  *bool  `json:"trackInventoryByDefault"`
}

// Get fetches the current shop settings.
func (r *ShopRepository) Get(ctx context.Context) (*config.ShopSettings, error) {
	var resp struct {
		Shop wireShop `json:"shop"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, shopQuery, nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &config.ShopSettings{
		Description:              resp.Shop.Description,
		DefaultMailSenderName:    resp.Shop.DefaultMailSenderName,
		DefaultMailSenderAddress: resp.Shop.DefaultMailSenderAddress,
		TrackInventoryByDefault:  resp.Shop.TrackInventoryByDefault,
	}, nil
}

// Update pushes the declared shop settings. Fields left unset in the
// declaration are omitted from the mutation input and keep their remote
// values.
func (r *ShopRepository) Update(ctx context.Context, s *config.ShopSettings) error {
	input := map[string]interface{}{}
	if s.Description != "" {
		input["description"] = s.Description
	}
	if s.DefaultMailSenderName != "" {
		input["defaultMailSenderName"] = s.DefaultMailSenderName
	}
	if s.DefaultMailSenderAddress != "" {
		input["defaultMailSenderAddress"] = s.DefaultMailSenderAddress
	}
	if s.TrackInventoryByDefault != nil {
		input["trackInventoryByDefault"] = *s.TrackInventoryByDefault
	}
	var resp struct {
		ShopSettingsUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"shopSettingsUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, shopSettingsUpdateMutation, map[string]interface{}{"input": input}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ShopSettingsUpdate.Errors)
	})
}
