// Package client implements the remote backend surface used by the
// optimistic list coordinator. Rejections (4xx) come back with the
// server's message verbatim where available; transport failures and
// 5xx responses come back as retryable transport errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/listsync"
	"github.com/grocery-pricer/internal/models"
)

// ListClient talks to the shopping list backend over HTTP.
type ListClient struct {
	http *resty.Client
}

var _ listsync.RemoteAPI = (*ListClient)(nil)

// NewListClient creates a client against the given base URL.
func NewListClient(baseURL string, token string, timeout time.Duration) *ListClient {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	if token != "" {
		httpClient.SetAuthToken(token)
	}
	httpClient.SetHeader("Accept", "application/json")
	httpClient.SetHeader("Content-Type", "application/json")

	return &ListClient{http: httpClient}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateList creates a list remotely.
func (c *ListClient) CreateList(ctx context.Context, ownerID string, title string, isPublic bool) (*models.ShoppingList, error) {
	var created models.ShoppingList
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]interface{}{
			"ownerId":  ownerID,
			"title":    title,
			"isPublic": isPublic,
		}).
		Post("/api/v1/lists")
	if err := c.settle("create list", resp, err); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, errors.NewTransportError("create list", err)
	}
	return &created, nil
}

// UpdateList patches a list's title or visibility remotely.
func (c *ListClient) UpdateList(ctx context.Context, listID string, title *string, isPublic *bool) (*models.ShoppingList, error) {
	body := map[string]interface{}{}
	if title != nil {
		body["title"] = *title
	}
	if isPublic != nil {
		body["isPublic"] = *isPublic
	}

	var updated models.ShoppingList
	resp, err := c.http.R().SetContext(ctx).
		SetBody(body).
		Patch(fmt.Sprintf("/api/v1/lists/%s", listID))
	if err := c.settle("update list", resp, err); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return nil, errors.NewTransportError("update list", err)
	}
	return &updated, nil
}

// DeleteList deletes a list remotely.
func (c *ListClient) DeleteList(ctx context.Context, listID string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete(fmt.Sprintf("/api/v1/lists/%s", listID))
	return c.settle("delete list", resp, err)
}

// AddItem appends an item remotely and returns the server's version.
func (c *ListClient) AddItem(ctx context.Context, listID string, item *models.ShoppingListItem) (*models.ShoppingListItem, error) {
	var created models.ShoppingListItem
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]interface{}{
			"ean":      item.EAN,
			"name":     item.Name,
			"brand":    item.Brand,
			"quantity": item.Quantity,
			"unit":     item.Unit,
			"amount":   item.EffectiveAmount(),
		}).
		Post(fmt.Sprintf("/api/v1/lists/%s/items", listID))
	if err := c.settle("add item", resp, err); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, errors.NewTransportError("add item", err)
	}
	return &created, nil
}

// UpdateItem patches an item remotely.
func (c *ListClient) UpdateItem(ctx context.Context, listID string, itemID string, patch listsync.ItemPatch) (*models.ShoppingListItem, error) {
	var updated models.ShoppingListItem
	resp, err := c.http.R().SetContext(ctx).
		SetBody(patch).
		Patch(fmt.Sprintf("/api/v1/lists/%s/items/%s", listID, itemID))
	if err := c.settle("update item", resp, err); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return nil, errors.NewTransportError("update item", err)
	}
	return &updated, nil
}

// RemoveItem deletes an item remotely.
func (c *ListClient) RemoveItem(ctx context.Context, listID string, itemID string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete(fmt.Sprintf("/api/v1/lists/%s/items/%s", listID, itemID))
	return c.settle("remove item", resp, err)
}

// settle maps a response to the write-path error taxonomy.
func (c *ListClient) settle(operation string, resp *resty.Response, err error) error {
	if err != nil {
		return errors.NewTransportError(operation, err)
	}

	status := resp.StatusCode()
	switch {
	case status < 400:
		return nil
	case status < 500:
		var body errorBody
		message := ""
		if unmarshalErr := json.Unmarshal(resp.Body(), &body); unmarshalErr == nil {
			message = body.Error.Message
		}
		return errors.NewMutationRejectedError(status, message)
	default:
		return errors.NewTransportError(operation, fmt.Errorf("status %d", status))
	}
}
