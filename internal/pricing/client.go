// Package pricing talks to the external price source and turns its
// payloads into domain quotes. All calls here are reads and may be
// retried; prices arrive as decimal strings and are parsed at this
// boundary, with malformed values degrading to absent rather than zero.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/grocery-pricer/internal/config"
	"github.com/grocery-pricer/internal/errors"
	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/retry"
	"github.com/grocery-pricer/internal/types"
)

// Client fetches product quotes and store level prices from the price
// source API.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	retry   retry.Config
	baseURL string
}

type chainPricePayload struct {
	Chain    string  `json:"chain"`
	PriceMin *string `json:"price_min"`
	PriceAvg *string `json:"price_avg"`
	PriceMax *string `json:"price_max"`
	Date     string  `json:"date,omitempty"`
}

type productPayload struct {
	EAN      string              `json:"ean"`
	Name     string              `json:"name"`
	Brand    *string             `json:"brand"`
	Quantity *string             `json:"quantity"`
	Unit     *string             `json:"unit"`
	Chains   []chainPricePayload `json:"chains"`
}

type storePricePayload struct {
	EAN          string  `json:"ean"`
	Chain        string  `json:"chain"`
	City         *string `json:"city"`
	Address      *string `json:"address"`
	RegularPrice *string `json:"regular_price"`
	SpecialPrice *string `json:"special_price"`
}

// NewClient builds a rate limited client from configuration.
func NewClient(cfg config.PriceAPIConfig) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetBaseURL(cfg.BaseURL)
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}
	httpClient.SetHeader("Accept", "application/json")

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		retry:   retry.DefaultConfig(),
		baseURL: cfg.BaseURL,
	}
}

// ProductByEAN fetches the product and its per-chain quotes for a given
// day. A date of "" means today. A 404 from the source means the
// product is unknown and returns a nil product without error.
func (c *Client) ProductByEAN(ctx context.Context, ean string, date string) (*types.Product, error) {
	if strings.TrimSpace(ean) == "" {
		return nil, errors.NewInvalidEANError(ean)
	}

	var payload productPayload
	var found bool

	err := retry.WithExponentialBackoff(ctx, c.retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req := c.http.R().SetContext(ctx)
		if date != "" {
			req.SetQueryParam("date", date)
		}
		resp, err := req.Get(fmt.Sprintf("/products/%s", ean))
		if err != nil {
			return errors.NewProviderError("product lookup", err)
		}

		switch {
		case resp.StatusCode() == http.StatusNotFound:
			found = false
			return nil
		case resp.StatusCode() >= 500:
			return errors.NewProviderError("product lookup",
				fmt.Errorf("status %d", resp.StatusCode()))
		case resp.StatusCode() >= 400:
			return errors.NewInvalidEANError(ean)
		}

		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return errors.NewProviderError("product decode", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return c.toProduct(ctx, payload), nil
}

// StorePrices fetches store level prices of a single product across all
// known stores.
func (c *Client) StorePrices(ctx context.Context, ean string) ([]types.StorePrice, error) {
	var payloads []storePricePayload

	err := retry.WithExponentialBackoff(ctx, c.retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.http.R().SetContext(ctx).Get(fmt.Sprintf("/products/%s/stores", ean))
		if err != nil {
			return errors.NewProviderError("store prices", err)
		}
		if resp.StatusCode() >= 500 {
			return errors.NewProviderError("store prices",
				fmt.Errorf("status %d", resp.StatusCode()))
		}
		if resp.StatusCode() >= 400 {
			payloads = nil
			return nil
		}

		return json.Unmarshal(resp.Body(), &payloads)
	})
	if err != nil {
		return nil, err
	}

	prices := make([]types.StorePrice, 0, len(payloads))
	for _, p := range payloads {
		store := types.StoreInfo{}
		if p.City != nil {
			store.City = *p.City
		}
		if p.Address != nil {
			store.Address = *p.Address
		}
		prices = append(prices, types.StorePrice{
			EAN:          p.EAN,
			Chain:        p.Chain,
			Code:         types.NormalizeChainName(p.Chain),
			Store:        store,
			RegularPrice: parsePrice(p.RegularPrice),
			SpecialPrice: parsePrice(p.SpecialPrice),
		})
	}
	return prices, nil
}

func (c *Client) toProduct(ctx context.Context, payload productPayload) *types.Product {
	logger := logging.FromContext(ctx)

	chains := make([]types.ChainQuote, 0, len(payload.Chains))
	for _, ch := range payload.Chains {
		quote := types.ChainQuote{
			Chain:    ch.Chain,
			Code:     types.NormalizeChainName(ch.Chain),
			MinPrice: parsePrice(ch.PriceMin),
			AvgPrice: parsePrice(ch.PriceAvg),
			MaxPrice: parsePrice(ch.PriceMax),
			AsOfDate: ch.Date,
		}
		if ch.PriceAvg != nil && quote.AvgPrice == nil {
			logger.WithFields(map[string]interface{}{
				"ean":   payload.EAN,
				"chain": ch.Chain,
			}).Warn("discarding malformed average price")
		}
		chains = append(chains, quote)
	}

	return &types.Product{
		EAN:      payload.EAN,
		Name:     payload.Name,
		Brand:    payload.Brand,
		Quantity: payload.Quantity,
		Unit:     payload.Unit,
		Chains:   chains,
	}
}

// parsePrice converts a decimal string into a price. Absent or
// malformed input yields nil, never zero.
func parsePrice(s *string) *float64 {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &v
}

// formatDate renders a day in the wire format the source expects.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
