package model

// Metadata keys written onto SureCart records. MetaPrintifyID is the join
// key: at most one SureCart product may carry a given Printify product id.
const (
	MetaPrintifyID         = "printify_id"
	MetaPrintifyExternalID = "printify_external_id"
	MetaPrintifyProvider   = "printify_print_provider_id"
	MetaPrintifyBlueprint  = "printify_blueprint_id"
	MetaPrintifySyncedAt   = "printify_synced_at"
	MetaPrintifyImages     = "printify_images"
	MetaPrintifyVariantID  = "printify_variant_id"
	MetaVariantOptions     = "printify_variant_options"
)

// SureProduct mirrors the SureCart product resource, restricted to the
// fields the sync reads and writes.
type SureProduct struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type SurePrice struct {
	ID        string            `json:"id,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	Name      string            `json:"name"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Recurring bool              `json:"recurring"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type SureVariant struct {
	ID        string            `json:"id,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	Title     string            `json:"title"`
	SKU       string            `json:"sku"`
	Amount    int64             `json:"amount"`
	Cost      int64             `json:"cost,omitempty"`
	Option1   string            `json:"option_1,omitempty"`
	Option2   string            `json:"option_2,omitempty"`
	Option3   string            `json:"option_3,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ProductData is the mapper output: everything needed to create or update
// one SureCart product and its dependent records in a single pass.
type ProductData struct {
	Product  SureProduct
	Options  []Option
	Prices   []SurePrice
	Variants []SureVariant
	// Images holds every resolved image URL in order; Product.ImageURL is
	// always Images[0] when non-empty.
	Images []string
}
