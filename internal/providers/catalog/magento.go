package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ProductItem is one entry of the store's product listing. Attribute and
// extension blobs are kept raw and stored as-is.
type ProductItem struct {
	SKU                 string          `json:"sku"`
	TypeID              string          `json:"type_id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	CustomAttributes    json.RawMessage `json:"custom_attributes"`
	ExtensionAttributes json.RawMessage `json:"extension_attributes"`
}

type ProductPage struct {
	Items      []ProductItem `json:"items"`
	TotalCount int           `json:"total_count"`
}

type Client interface {
	ListProducts(ctx context.Context, page, pageSize int) (*ProductPage, error)
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("magento: GET %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

type MagentoClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewMagentoClient(baseURL, token string, hc *http.Client) *MagentoClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &MagentoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

func (c *MagentoClient) ListProducts(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	q := url.Values{}
	q.Set("searchCriteria[pageSize]", strconv.Itoa(pageSize))
	q.Set("searchCriteria[currentPage]", strconv.Itoa(page))
	endpoint := "/rest/V1/products?" + q.Encode()

	var out ProductPage
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MagentoClient) get(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("magento: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("magento: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("magento: invalid response from %s: %w", endpoint, err)
	}
	return nil
}
