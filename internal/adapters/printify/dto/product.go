package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"printify-surecart-sync/internal/domain/model"
)

// FlexString accepts both JSON strings and numbers. Printify ids show up as
// either depending on the endpoint.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// ImageDto tolerates the three shapes Printify uses for image entries: a
// bare URL string, or an object keyed by src, preview_url or url.
type ImageDto struct {
	ID  FlexString
	URL string
}

func (i *ImageDto) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		i.URL = s
		return nil
	}
	var obj struct {
		ID         FlexString `json:"id"`
		Src        string     `json:"src"`
		PreviewURL string     `json:"preview_url"`
		URL        string     `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	i.ID = obj.ID
	switch {
	case obj.Src != "":
		i.URL = obj.Src
	case obj.PreviewURL != "":
		i.URL = obj.PreviewURL
	default:
		i.URL = obj.URL
	}
	return nil
}

type VariantDto struct {
	ID      int64       `json:"id"`
	Title   string      `json:"title"`
	Price   json.Number `json:"price"`
	Cost    json.Number `json:"cost"`
	SKU     string      `json:"sku"`
	ImageID FlexString  `json:"image_id"`
	Image   *ImageDto   `json:"image,omitempty"`
	Options []int64     `json:"options,omitempty"`

	IsActive    *bool `json:"is_active,omitempty"`
	Active      *bool `json:"active,omitempty"`
	IsEnabled   *bool `json:"is_enabled,omitempty"`
	Enabled     *bool `json:"enabled,omitempty"`
	IsSelected  *bool `json:"is_selected,omitempty"`
	Selected    *bool `json:"selected,omitempty"`
	IsAvailable *bool `json:"is_available,omitempty"`
	Available   *bool `json:"available,omitempty"`
}

// ActiveFlag defaults to true; only an explicit false on any of the known
// flags disables the variant.
func (v VariantDto) ActiveFlag() bool {
	for _, flag := range []*bool{
		v.IsActive, v.Active,
		v.IsEnabled, v.Enabled,
		v.IsSelected, v.Selected,
		v.IsAvailable, v.Available,
	} {
		if flag != nil && !*flag {
			return false
		}
	}
	return true
}

type OptionDto struct {
	Name   string `json:"name"`
	Values []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"values,omitempty"`
}

type ProductDto struct {
	ID              FlexString   `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Price           json.Number  `json:"price"`
	ExternalID      FlexString   `json:"external_id"`
	BlueprintID     int          `json:"blueprint_id"`
	PrintProviderID int          `json:"print_provider_id"`
	PreviewURL      string       `json:"preview_url"`
	ThumbnailURL    string       `json:"thumbnail_url"`
	Images          []ImageDto   `json:"images,omitempty"`
	Variants        []VariantDto `json:"variants,omitempty"`
	Options         []OptionDto  `json:"options,omitempty"`
}

// ProductListResponse accepts both the enveloped `{"data": [...]}` body and
// a bare array.
type ProductListResponse struct {
	Products []ProductDto
}

func (r *ProductListResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &r.Products)
	}
	var envelope struct {
		Data []ProductDto `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	r.Products = envelope.Data
	return nil
}

// MapProduct flattens a raw payload into the canonical snapshot. All shape
// tolerance ends here.
func MapProduct(p ProductDto) model.Product {
	product := model.Product{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Price:       numberToFloat(p.Price),
		ExternalID:  p.ExternalID.String(),
		BlueprintID: p.BlueprintID,
		ProviderID:  p.PrintProviderID,
	}

	for _, img := range p.Images {
		if img.URL == "" && img.ID == "" {
			continue
		}
		product.Images = append(product.Images, model.Image{ID: img.ID.String(), URL: img.URL})
	}
	if len(product.Images) == 0 {
		if p.PreviewURL != "" {
			product.Images = append(product.Images, model.Image{URL: p.PreviewURL})
		} else if p.ThumbnailURL != "" {
			product.Images = append(product.Images, model.Image{URL: p.ThumbnailURL})
		}
	}

	for _, v := range p.Variants {
		variant := model.Variant{
			ID:      v.ID,
			Title:   v.Title,
			Price:   numberToFloat(v.Price),
			Cost:    numberToFloat(v.Cost),
			SKU:     v.SKU,
			Active:  v.ActiveFlag(),
			Options: v.Options,
		}
		switch {
		case v.ImageID != "":
			variant.ImageID = v.ImageID.String()
		case v.Image != nil && v.Image.ID != "":
			variant.ImageID = v.Image.ID.String()
		case v.Image != nil && v.Image.URL != "":
			// Direct URL on the variant: surface it as an extra product
			// image so the mapper can pick it up.
			product.Images = append(product.Images, model.Image{URL: v.Image.URL})
		}
		product.Variants = append(product.Variants, variant)
	}

	for _, o := range p.Options {
		option := model.Option{Name: strings.TrimSpace(o.Name)}
		for _, val := range o.Values {
			option.Values = append(option.Values, val.Title)
		}
		product.Options = append(product.Options, option)
	}

	return product
}

func numberToFloat(n json.Number) float64 {
	if n == "" {
		return 0
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
