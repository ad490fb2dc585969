package repository

import (
	"context"

	"storesync/internal/config"
	"storesync/internal/graphql"
	"storesync/internal/resilience"
)

const channelsQuery = `
query StoresyncChannels {
  channels {
    id
    slug
    name
    currencyCode
    defaultCountry { code }
    isActive
  }
}`

const channelCreateMutation = `
mutation StoresyncChannelCreate($input: ChannelCreateInput!) {
  channelCreate(input: $input) {
    channel { id }
    errors { field message code }
  }
}`

const channelUpdateMutation = `
mutation StoresyncChannelUpdate($id: ID!, $input: ChannelUpdateInput!) {
  channelUpdate(id: $id, input: $input) {
    channel { id }
    errors { field message code }
  }
}`

const channelDeleteMutation = `
mutation StoresyncChannelDelete($id: ID!) {
  channelDelete(id: $id) {
    errors { field message code }
  }
}`

// ChannelRepository reads and mutates sales channels.
type ChannelRepository struct {
	client *graphql.Client
	rc     *resilience.Context
}

type wireChannel struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	CurrencyCode   string `json:"currencyCode"`
	DefaultCountry struct {
		Code string `json:"code"`
	} `json:"defaultCountry"`
	IsActive bool `json:"isActive"`
}

// List fetches all channels mapped to the configuration shape.
func (r *ChannelRepository) List(ctx context.Context) ([]Remote[config.Channel], error) {
	var resp struct {
		Channels []wireChannel `json:"channels"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		return r.client.Do(ctx, channelsQuery, nil, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Remote[config.Channel], len(resp.Channels))
	for i, wc := range resp.Channels {
		isActive := wc.IsActive
		out[i] = Remote[config.Channel]{
			ID: wc.ID,
			Entity: config.Channel{
				Slug:           wc.Slug,
				Name:           wc.Name,
				CurrencyCode:   wc.CurrencyCode,
				DefaultCountry: wc.DefaultCountry.Code,
				IsActive:       &isActive,
			},
		}
	}
	return out, nil
}

func channelInput(c config.Channel) map[string]interface{} {
	input := map[string]interface{}{
		"slug":           c.Slug,
		"name":           c.Name,
		"currencyCode":   c.CurrencyCode,
		"defaultCountry": c.DefaultCountry,
	}
	if c.IsActive != nil {
		input["isActive"] = *c.IsActive
	}
	return input
}

// Create creates a channel and returns its remote ID.
func (r *ChannelRepository) Create(ctx context.Context, c config.Channel) (string, error) {
	var resp struct {
		ChannelCreate struct {
			Channel *struct {
				ID string `json:"id"`
			} `json:"channel"`
			Errors []payloadError `json:"errors"`
		} `json:"channelCreate"`
	}
	err := r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, channelCreateMutation,
			map[string]interface{}{"input": channelInput(c)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ChannelCreate.Errors)
	})
	if err != nil {
		return "", err
	}
	return resp.ChannelCreate.Channel.ID, nil
}

// Update applies the declared channel fields to an existing channel.
func (r *ChannelRepository) Update(ctx context.Context, id string, c config.Channel) error {
	var resp struct {
		ChannelUpdate struct {
			Errors []payloadError `json:"errors"`
		} `json:"channelUpdate"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, channelUpdateMutation,
			map[string]interface{}{"id": id, "input": channelInput(c)}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ChannelUpdate.Errors)
	})
}

// Delete removes a channel.
func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	var resp struct {
		ChannelDelete struct {
			Errors []payloadError `json:"errors"`
		} `json:"channelDelete"`
	}
	return r.rc.Execute(ctx, func(ctx context.Context) error {
		if err := r.client.Do(ctx, channelDeleteMutation,
			map[string]interface{}{"id": id}, &resp); err != nil {
			return err
		}
		return payloadErrorsToError(resp.ChannelDelete.Errors)
	})
}
