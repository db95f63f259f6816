package dto

import (
	"strconv"

	"printify-surecart-sync/internal/domain/model"
)

// OrderDto mirrors the nested SureCart order resource; MapOrder flattens it
// into the bridge's model.
type OrderDto struct {
	ID       string `json:"id"`
	Number   any    `json:"number"`
	Status   string `json:"status"`
	Customer *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer,omitempty"`
	ShippingAddress *AddressDto `json:"shipping_address,omitempty"`
	BillingAddress  *AddressDto `json:"billing_address,omitempty"`
	LineItems       struct {
		Data []LineItemDto `json:"data,omitempty"`
	} `json:"line_items"`
}

type AddressDto struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Line1      string `json:"line_1"`
	Line2      string `json:"line_2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type LineItemDto struct {
	Quantity int `json:"quantity"`
	Price    *struct {
		Product *struct {
			Metadata map[string]string `json:"metadata,omitempty"`
		} `json:"product,omitempty"`
	} `json:"price,omitempty"`
	Variant *struct {
		Metadata map[string]string `json:"metadata,omitempty"`
	} `json:"variant,omitempty"`
}

func MapOrder(o OrderDto) model.SureOrder {
	order := model.SureOrder{
		ID:     o.ID,
		Number: numberToString(o.Number),
		Status: o.Status,
	}
	if o.Customer != nil {
		order.Customer = &model.OrderCustomer{
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Email:     o.Customer.Email,
			Phone:     o.Customer.Phone,
		}
	}
	order.ShippingAddress = mapAddress(o.ShippingAddress)
	order.BillingAddress = mapAddress(o.BillingAddress)

	for _, item := range o.LineItems.Data {
		lineItem := model.OrderLineItem{Quantity: item.Quantity}
		if item.Price != nil && item.Price.Product != nil {
			lineItem.Product = item.Price.Product.Metadata
		}
		if item.Variant != nil {
			lineItem.Variant = item.Variant.Metadata
		}
		order.LineItems = append(order.LineItems, lineItem)
	}
	return order
}

func mapAddress(a *AddressDto) *model.OrderAddress {
	if a == nil {
		return nil
	}
	return &model.OrderAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func numberToString(n any) string {
	switch v := n.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
