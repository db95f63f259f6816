package model

// SureOrder is the slice of the SureCart order resource the bridge consumes.
type SureOrder struct {
	ID              string          `json:"id"`
	Number          string          `json:"number,omitempty"`
	Status          string          `json:"status"`
	Customer        *OrderCustomer  `json:"customer,omitempty"`
	ShippingAddress *OrderAddress   `json:"shipping_address,omitempty"`
	BillingAddress  *OrderAddress   `json:"billing_address,omitempty"`
	LineItems       []OrderLineItem `json:"line_items,omitempty"`
}

type OrderCustomer struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type OrderAddress struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Line1      string `json:"line_1,omitempty"`
	Line2      string `json:"line_2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type OrderLineItem struct {
	Quantity int               `json:"quantity"`
	Product  map[string]string `json:"product_metadata,omitempty"`
	Variant  map[string]string `json:"variant_metadata,omitempty"`
}

// FulfillmentOrder is the request body for creating a Printify order.
type FulfillmentOrder struct {
	ExternalID       string            `json:"external_id"`
	Label            string            `json:"label,omitempty"`
	LineItems        []FulfillmentItem `json:"line_items"`
	ShippingMethod   int               `json:"shipping_method"`
	ShippingAddress  ShippingAddress   `json:"address_to"`
	SendShippingNote bool              `json:"send_shipping_notification"`
}

type FulfillmentItem struct {
	ProductID string `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Region    string `json:"region,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// MapOrderStatus translates a SureCart order status into the Printify one.
// Unmapped statuses return "" and the caller treats the event as a no-op.
func MapOrderStatus(status string) string {
	switch status {
	case "paid", "processing":
		return "pending"
	case "completed":
		return "completed"
	case "refunded", "canceled":
		return "canceled"
	default:
		return ""
	}
}
