package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrProductUnavailable = errors.New("product unavailable")

// Client looks up products in the external content store over HTTP.
type Client struct {
	baseURL    string
	cdnBaseURL string
	httpClient *http.Client
}

func NewClient(baseURL, cdnBaseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetProduct fetches a product by id. Lookup failures surface as
// ErrProductUnavailable; image refs that cannot be resolved are kept with an
// empty URL and degrade display only.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: empty product id", ErrProductUnavailable)
	}

	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("%w: content store returned %d for %s", ErrProductUnavailable, resp.StatusCode, id)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}

	for i := range product.Images {
		product.Images[i].URL = c.resolveImage(product.Images[i])
	}

	return product, nil
}

// resolveImage turns an image reference into a displayable CDN URL.
// Unresolvable refs yield "", which callers treat as a missing image.
func (c *Client) resolveImage(ref ImageRef) string {
	if ref.URL != "" {
		return ref.URL
	}
	if ref.AssetID == "" || c.cdnBaseURL == "" {
		return ""
	}
	return c.cdnBaseURL + "/" + url.PathEscape(ref.AssetID)
}
