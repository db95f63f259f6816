// Package mapper converts a Printify product snapshot into the SureCart
// records the storefront port writes. The conversion is pure: the same
// snapshot and timestamp always produce the same output.
package mapper

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"printify-surecart-sync/internal/domain/model"
)

const defaultCurrency = "usd"

var (
	brTag    = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTag  = regexp.MustCompile(`<[^>]*>`)
	skuChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Map builds the full destination payload for one upstream product.
// syncedAt lands in metadata and is the only non-deterministic input.
func Map(p model.Product, syncedAt time.Time) model.ProductData {
	title := CleanText(p.Title)
	if title == "" {
		title = "Untitled Product"
	}

	data := model.ProductData{
		Product: model.SureProduct{
			Name:        title,
			Description: cleanDescription(p.Description),
			Metadata: map[string]string{
				model.MetaPrintifyID:         p.ID,
				model.MetaPrintifyExternalID: p.ExternalID,
				model.MetaPrintifyProvider:   strconv.Itoa(p.ProviderID),
				model.MetaPrintifyBlueprint:  strconv.Itoa(p.BlueprintID),
				model.MetaPrintifySyncedAt:   syncedAt.UTC().Format("2006-01-02 15:04:05"),
			},
		},
	}

	data.Images = selectImages(p)
	if len(data.Images) > 0 {
		data.Product.ImageURL = data.Images[0]
		if encoded, err := json.Marshal(data.Images); err == nil {
			data.Product.Metadata[model.MetaPrintifyImages] = string(encoded)
		}
	}

	active := activeVariants(p.Variants)
	if len(active) == 0 {
		data.Prices, data.Variants = defaultPriceAndVariant(p)
		return data
	}

	data.Options = deriveOptions(active, p.Options)
	if len(data.Options) > 0 {
		data.Product.Metadata["product_options"] = encodeOptions(data.Options)
	}

	for _, av := range active {
		variantTitle := CleanText(av.variant.Title)
		if variantTitle == "" {
			variantTitle = fmt.Sprintf("Variant %d", av.index+1)
		}

		amount := NormalizeAmount(av.variant.Price)
		cost := NormalizeAmount(av.variant.Cost)
		sku := SanitizeSKU(av.variant.SKU)
		if sku == "" {
			sku = fmt.Sprintf("PRINTIFY-%s-%d", p.ID, av.index+1)
		}

		variantMeta := map[string]string{
			model.MetaPrintifyVariantID: strconv.FormatInt(av.variant.ID, 10),
			model.MetaVariantOptions:    encodeVariantOptions(av.variant.Options),
		}

		data.Prices = append(data.Prices, model.SurePrice{
			Name:      variantTitle,
			Amount:    amount,
			Currency:  defaultCurrency,
			Recurring: false,
			Metadata: map[string]string{
				model.MetaPrintifyVariantID: strconv.FormatInt(av.variant.ID, 10),
			},
		})

		sv := model.SureVariant{
			Title:    variantTitle,
			SKU:      sku,
			Amount:   amount,
			Cost:     cost,
			Metadata: variantMeta,
		}
		applyOptionValues(&sv, variantTitle)
		data.Variants = append(data.Variants, sv)
	}

	return data
}

type indexedVariant struct {
	index   int
	variant model.Variant
}

func activeVariants(variants []model.Variant) []indexedVariant {
	var active []indexedVariant
	for i, v := range variants {
		if v.Active {
			active = append(active, indexedVariant{index: i, variant: v})
		}
	}
	return active
}

// deriveOptions splits every active variant title on " / " and collects the
// distinct values of each positional segment, in insertion order. Option
// names come from the upstream option metadata when present.
func deriveOptions(active []indexedVariant, upstream []model.Option) []model.Option {
	var names []string
	for _, o := range upstream {
		names = append(names, o.Name)
	}

	var options []model.Option
	seen := map[int]map[string]bool{}

	for _, av := range active {
		title := CleanText(av.variant.Title)
		if title == "" {
			continue
		}
		for i, part := range strings.Split(title, " / ") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			for len(options) <= i {
				n := len(options)
				name := fmt.Sprintf("Option %d", n+1)
				if n < len(names) && strings.TrimSpace(names[n]) != "" {
					name = names[n]
				}
				options = append(options, model.Option{Name: name})
				seen[n] = map[string]bool{}
			}
			if !seen[i][part] {
				seen[i][part] = true
				options[i].Values = append(options[i].Values, part)
			}
		}
	}
	return options
}

func applyOptionValues(v *model.SureVariant, title string) {
	parts := strings.Split(title, " / ")
	if len(parts) > 0 {
		v.Option1 = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		v.Option2 = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		v.Option3 = strings.TrimSpace(parts[2])
	}
}

// selectImages prefers images referenced by active variants and always keeps
// the first catalog image as the primary fallback.
func selectImages(p model.Product) []string {
	wanted := map[string]bool{}
	variantSpecific := false
	for _, v := range p.Variants {
		if v.Active && v.ImageID != "" {
			wanted[v.ImageID] = true
			variantSpecific = true
		}
	}

	var urls []string
	seen := map[string]bool{}
	add := func(raw string) {
		u := normalizeImageURL(raw)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for i, img := range p.Images {
		if variantSpecific && !wanted[img.ID] && i != 0 {
			continue
		}
		add(img.URL)
	}
	return urls
}

func normalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https:" + raw
	}
	return raw
}

func defaultPriceAndVariant(p model.Product) ([]model.SurePrice, []model.SureVariant) {
	amount := NormalizeAmount(p.Price)

	prices := []model.SurePrice{{
		Name:      "Default",
		Amount:    amount,
		Currency:  defaultCurrency,
		Recurring: false,
	}}
	variants := []model.SureVariant{{
		Title:  "Default",
		SKU:    fmt.Sprintf("PRINTIFY-%s-DEFAULT", p.ID),
		Amount: amount,
		Metadata: map[string]string{
			model.MetaPrintifyVariantID: "",
			model.MetaVariantOptions:    "{}",
		},
	}}
	return prices, variants
}

// NormalizeAmount turns an upstream decimal-unit amount into integer cents.
// Values above 1000 are assumed to be minor units already and divided back
// before re-deriving. Negative amounts clamp to 0.
func NormalizeAmount(value float64) int64 {
	if value <= 0 {
		return 0
	}
	d := decimal.NewFromFloat(value)
	if d.GreaterThan(decimal.NewFromInt(1000)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// SanitizeSKU keeps [A-Za-z0-9_-] and drops everything else. Returns "" when
// nothing survives so the caller can synthesize one.
func SanitizeSKU(sku string) string {
	return skuChars.ReplaceAllString(strings.TrimSpace(sku), "")
}

// CleanText strips markup, decodes HTML entities and trims whitespace.
func CleanText(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

func cleanDescription(s string) string {
	s = brTag.ReplaceAllString(s, "\n")
	return CleanText(s)
}

func encodeVariantOptions(options []int64) string {
	if len(options) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func encodeOptions(options []model.Option) string {
	encoded, err := json.Marshal(options)
	if err != nil {
		return ""
	}
	return string(encoded)
}
