package printify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"printify-surecart-sync/internal/adapters/printify/dto"
	"printify-surecart-sync/internal/config"
	"printify-surecart-sync/internal/domain/model"
)

// CatalogService is the catalog source port: paginated listings, per-product
// detail and the order calls the fulfillment bridge needs.
type CatalogService interface {
	ListProducts(ctx context.Context, page, limit int) ([]model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	CreateOrder(ctx context.Context, order model.FulfillmentOrder) (string, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

type Client struct {
	config     config.PrintifyConfig
	httpClient *http.Client
}

func NewClient(config config.PrintifyConfig, httpClient *http.Client) CatalogService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

const defaultPageLimit = 100

func (c *Client) ListProducts(ctx context.Context, page, limit int) ([]model.Product, error) {
	endpoint := fmt.Sprintf("/shops/%s/products.json?page=%d&limit=%d", c.config.ShopID, page, limit)

	body, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if isNotFoundError(err) {
		// Some deployments expose the listing without the trailing .json.
		endpoint = fmt.Sprintf("/shops/%s/products?page=%d&limit=%d", c.config.ShopID, page, limit)
		body, err = c.request(ctx, http.MethodGet, endpoint, nil)
	}
	if err != nil {
		return nil, err
	}

	var resp dto.ProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("printify products decode: %w", err)
	}

	products := make([]model.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, dto.MapProduct(p))
	}
	return products, nil
}

// ListAllProducts pages from 1 until a short or empty page and concatenates
// the results.
func (c *Client) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	var all []model.Product
	for page := 1; ; page++ {
		products, err := c.ListProducts(ctx, page, defaultPageLimit)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}
		all = append(all, products...)
		if len(products) < defaultPageLimit {
			break
		}
	}
	return all, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return model.Product{}, errors.New("printify product id is required")
	}
	endpoint := fmt.Sprintf("/shops/%s/products/%s.json", c.config.ShopID, id)

	body, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if isNotFoundError(err) {
		endpoint = fmt.Sprintf("/shops/%s/products/%s", c.config.ShopID, id)
		body, err = c.request(ctx, http.MethodGet, endpoint, nil)
	}
	if err != nil {
		return model.Product{}, err
	}

	var product dto.ProductDto
	if err := json.Unmarshal(body, &product); err != nil {
		return model.Product{}, fmt.Errorf("printify product decode: %w", err)
	}
	return dto.MapProduct(product), nil
}

func (c *Client) CreateOrder(ctx context.Context, order model.FulfillmentOrder) (string, error) {
	endpoint := fmt.Sprintf("/shops/%s/orders.json", c.config.ShopID)

	body, err := c.request(ctx, http.MethodPost, endpoint, order)
	if err != nil {
		return "", err
	}

	var resp struct {
		ID dto.FlexString `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("printify order decode: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("printify order create returned empty id")
	}
	return resp.ID.String(), nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	endpoint := fmt.Sprintf("/shops/%s/orders/%s.json", c.config.ShopID, orderID)

	payload := struct {
		Status string `json:"status"`
	}{Status: status}

	_, err := c.request(ctx, http.MethodPut, endpoint, payload)
	return err
}

func (c *Client) request(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < retryMax; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, retryDelay(attempt-1)); err != nil {
				return nil, err
			}
		}

		body, err := c.doRequest(ctx, method, endpoint, reqBody)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryableHTTPError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, reqBody []byte) ([]byte, error) {
	var bodyReader io.Reader
	if len(reqBody) > 0 {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseUrl+endpoint, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(resp.StatusCode, resp.Status, respBody)
	}
	return respBody, nil
}
