package catalog

import "github.com/shopspring/decimal"

// Product is read-only catalog data owned by the external content store.
// The core never writes products; it only copies them into cart items.
type Product struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Images []ImageRef      `json:"images"`
}

// ImageRef is a content-store image reference. It may already carry a
// resolved URL, or only an asset id that the client resolves against the
// store's CDN.
type ImageRef struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

// ImageURLs returns the displayable URLs for the product's images, skipping
// refs that could not be resolved. An empty result degrades display only.
func (p Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, ref := range p.Images {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}
