package surecart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"printify-surecart-sync/internal/adapters/surecart/dto"
	"printify-surecart-sync/internal/config"
	"printify-surecart-sync/internal/domain/model"
)

// ErrNotFound is returned when a metadata lookup matches no product.
var ErrNotFound = errors.New("surecart: not found")

// StorefrontService is the destination port. Upserts key the correspondence
// between incoming and existing prices/variants by the upstream variant id
// stored in metadata, falling back to position for rows that predate it.
// Excess destination rows are never deleted, so variants removed upstream can
// linger until cleaned up manually.
type StorefrontService interface {
	FindByPrintifyID(ctx context.Context, printifyID string) (*model.SureProduct, error)
	CreateProduct(ctx context.Context, product model.SureProduct) (*model.SureProduct, error)
	UpdateProduct(ctx context.Context, id string, product model.SureProduct) (*model.SureProduct, error)
	UpsertPrices(ctx context.Context, productID string, prices []model.SurePrice) error
	UpsertVariants(ctx context.Context, productID string, variants []model.SureVariant) error
	AttachMedia(ctx context.Context, productID, imageURL string) bool
	GetOrder(ctx context.Context, orderID string) (*model.SureOrder, error)
}

type Client struct {
	config     config.SureCartConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config config.SureCartConfig, httpClient *http.Client, logger *zap.Logger) StorefrontService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func (c *Client) FindByPrintifyID(ctx context.Context, printifyID string) (*model.SureProduct, error) {
	endpoint := "/products?" + url.Values{
		"metadata[" + model.MetaPrintifyID + "]": {printifyID},
	}.Encode()

	body, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse[model.SureProduct]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("surecart products decode: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNotFound
	}
	if len(resp.Data) > 1 {
		// The join key should be unique; nothing enforces it, so take the
		// first match and surface the ambiguity.
		c.logger.Warn("multiple products share one printify id",
			zap.String("printify_id", printifyID),
			zap.Int("matches", len(resp.Data)))
	}
	return &resp.Data[0], nil
}

func (c *Client) CreateProduct(ctx context.Context, product model.SureProduct) (*model.SureProduct, error) {
	body, err := c.request(ctx, http.MethodPost, "/products", product)
	if err != nil {
		return nil, err
	}

	var created model.SureProduct
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("surecart product decode: %w", err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return nil, errors.New("surecart product create returned empty id")
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, product model.SureProduct) (*model.SureProduct, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("surecart product id is required")
	}

	body, err := c.request(ctx, http.MethodPatch, "/products/"+id, product)
	if err != nil {
		return nil, err
	}

	var updated model.SureProduct
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("surecart product decode: %w", err)
	}
	return &updated, nil
}

func (c *Client) UpsertPrices(ctx context.Context, productID string, prices []model.SurePrice) error {
	existing, err := c.listPrices(ctx, productID)
	if err != nil {
		return err
	}

	rows := make([]existingRow, len(existing))
	for i, p := range existing {
		rows[i] = existingRow{id: p.ID, meta: p.Metadata}
	}

	matched := make(map[int]bool, len(rows))
	for i, price := range prices {
		price.ProductID = productID

		targetID := matchByVariantID(rows, matched, price.Metadata[model.MetaPrintifyVariantID])
		if targetID == "" && i < len(rows) && !matched[i] {
			targetID = rows[i].id
			matched[i] = true
		}

		if targetID != "" {
			if _, err := c.request(ctx, http.MethodPatch, "/prices/"+targetID, price); err != nil {
				return err
			}
		} else {
			if _, err := c.request(ctx, http.MethodPost, "/prices", price); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) UpsertVariants(ctx context.Context, productID string, variants []model.SureVariant) error {
	existing, err := c.listVariants(ctx, productID)
	if err != nil {
		return err
	}

	rows := make([]existingRow, len(existing))
	for i, v := range existing {
		rows[i] = existingRow{id: v.ID, meta: v.Metadata}
	}

	matched := make(map[int]bool, len(rows))
	for i, variant := range variants {
		variant.ProductID = productID

		targetID := matchByVariantID(rows, matched, variant.Metadata[model.MetaPrintifyVariantID])
		if targetID == "" && i < len(rows) && !matched[i] {
			targetID = rows[i].id
			matched[i] = true
		}

		if targetID != "" {
			if _, err := c.request(ctx, http.MethodPatch, "/variants/"+targetID, variant); err != nil {
				return err
			}
		} else {
			if _, err := c.request(ctx, http.MethodPost, "/variants", variant); err != nil {
				return err
			}
		}
	}
	return nil
}

type existingRow struct {
	id   string
	meta map[string]string
}

// matchByVariantID finds the existing row carrying the given upstream
// variant id and marks it consumed so two incoming rows can't claim it.
func matchByVariantID(existing []existingRow, matched map[int]bool, variantID string) string {
	if variantID == "" {
		return ""
	}
	for i, row := range existing {
		if matched[i] {
			continue
		}
		if row.meta[model.MetaPrintifyVariantID] == variantID {
			matched[i] = true
			return row.id
		}
	}
	return ""
}

func (c *Client) listPrices(ctx context.Context, productID string) ([]model.SurePrice, error) {
	body, err := c.request(ctx, http.MethodGet, "/prices?product_id="+url.QueryEscape(productID), nil)
	if err != nil {
		return nil, err
	}
	var resp listResponse[model.SurePrice]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("surecart prices decode: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) listVariants(ctx context.Context, productID string) ([]model.SureVariant, error) {
	body, err := c.request(ctx, http.MethodGet, "/variants?product_id="+url.QueryEscape(productID), nil)
	if err != nil {
		return nil, err
	}
	var resp listResponse[model.SureVariant]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("surecart variants decode: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) AttachMedia(ctx context.Context, productID, imageURL string) bool {
	if strings.TrimSpace(imageURL) == "" {
		return false
	}
	payload := struct {
		URL string `json:"url"`
	}{URL: imageURL}

	_, err := c.request(ctx, http.MethodPost, "/products/"+productID+"/media", payload)
	if err != nil {
		c.logger.Warn("media attach failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return false
	}
	return true
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.SureOrder, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errors.New("surecart order id is required")
	}

	body, err := c.request(ctx, http.MethodGet, "/orders/"+orderID, nil)
	if err != nil {
		var httpErr *httpStatusError
		if errors.As(err, &httpErr) && httpErr.statusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var order dto.OrderDto
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("surecart order decode: %w", err)
	}
	mapped := dto.MapOrder(order)
	return &mapped, nil
}

type httpStatusError struct {
	statusCode int
	status     string
	body       string
}

func (e *httpStatusError) Error() string {
	if strings.TrimSpace(e.body) == "" {
		return fmt.Sprintf("surecart request failed: %s", e.status)
	}
	return fmt.Sprintf("surecart request failed: %s: %s", e.status, e.body)
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
		return nil, &httpStatusError{
			statusCode: resp.StatusCode,
			status:     resp.Status,
			body:       strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}
