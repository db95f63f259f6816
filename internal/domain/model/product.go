package model

// Product is the normalized snapshot of a Printify product. The adapter
// flattens every known payload shape into this struct so nothing downstream
// branches on raw JSON.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	BlueprintID int       `json:"blueprint_id,omitempty"`
	ProviderID  int       `json:"print_provider_id,omitempty"`
	Images      []Image   `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

type Variant struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Cost    float64 `json:"cost"`
	SKU     string  `json:"sku"`
	ImageID string  `json:"image_id,omitempty"`
	// Active is false only when the payload explicitly disabled the variant
	// via one of the known flags.
	Active  bool    `json:"active"`
	Options []int64 `json:"options,omitempty"`
}

type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

type Image struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// HasDetail reports whether the snapshot already carries variant data, so
// the orchestrator can skip the per-product detail fetch.
func (p Product) HasDetail() bool {
	return len(p.Variants) > 0
}
