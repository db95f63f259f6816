package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringShapes(t *testing.T) {
	var payload struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
		D FlexString `json:"d"`
	}
	raw := `{"a": "text", "b": 42, "c": 3.14, "d": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, "text", payload.A.String())
	assert.Equal(t, "42", payload.B.String())
	assert.Equal(t, "3.14", payload.C.String())
	assert.Equal(t, "", payload.D.String())
}

func TestImageDtoShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		id   string
		url  string
	}{
		{"bare string", `"https://cdn.example.com/a.png"`, "", "https://cdn.example.com/a.png"},
		{"src object", `{"id": 1, "src": "https://cdn.example.com/b.png"}`, "1", "https://cdn.example.com/b.png"},
		{"preview_url object", `{"preview_url": "https://cdn.example.com/c.png"}`, "", "https://cdn.example.com/c.png"},
		{"url object", `{"url": "https://cdn.example.com/d.png"}`, "", "https://cdn.example.com/d.png"},
		{"src wins over url", `{"src": "https://a/src.png", "url": "https://a/url.png"}`, "", "https://a/src.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var img ImageDto
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &img))
			assert.Equal(t, tc.id, img.ID.String())
			assert.Equal(t, tc.url, img.URL)
		})
	}
}

func TestActiveFlag(t *testing.T) {
	yes, no := true, false

	assert.True(t, VariantDto{}.ActiveFlag(), "no flags means active")
	assert.True(t, VariantDto{IsEnabled: &yes, Available: &yes}.ActiveFlag())
	assert.False(t, VariantDto{IsEnabled: &no}.ActiveFlag())
	assert.False(t, VariantDto{Selected: &no}.ActiveFlag())
	// A single explicit false wins over any number of trues.
	assert.False(t, VariantDto{IsActive: &yes, Enabled: &yes, IsAvailable: &no}.ActiveFlag())
}

func TestProductListResponseShapes(t *testing.T) {
	var enveloped ProductListResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":"p1"}]}`), &enveloped))
	require.Len(t, enveloped.Products, 1)

	var bare ProductListResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"p1"},{"id":"p2"}]`), &bare))
	require.Len(t, bare.Products, 2)
}

func TestMapProductFallbackImages(t *testing.T) {
	product := MapProduct(ProductDto{
		ID:         "p1",
		Title:      "Tee",
		PreviewURL: "https://cdn.example.com/preview.png",
	})

	require.Len(t, product.Images, 1)
	assert.Equal(t, "https://cdn.example.com/preview.png", product.Images[0].URL)
}

func TestMapProductVariantImageHandling(t *testing.T) {
	var detail ProductDto
	raw := `{
		"id": "p1",
		"title": "Tee",
		"images": [{"id": 1, "src": "https://cdn.example.com/a.png"}],
		"variants": [
			{"id": 101, "title": "Red", "image_id": 1},
			{"id": 102, "title": "Blue", "image": {"id": 2}},
			{"id": 103, "title": "Green", "image": {"src": "https://cdn.example.com/g.png"}}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &detail))

	product := MapProduct(detail)

	require.Len(t, product.Variants, 3)
	assert.Equal(t, "1", product.Variants[0].ImageID)
	assert.Equal(t, "2", product.Variants[1].ImageID)
	assert.Equal(t, "", product.Variants[2].ImageID)

	// The direct-URL variant image surfaces as an extra product image.
	require.Len(t, product.Images, 2)
	assert.Equal(t, "https://cdn.example.com/g.png", product.Images[1].URL)
}

func TestMapProductNumericPrices(t *testing.T) {
	var detail ProductDto
	raw := `{"id": "p1", "variants": [{"id": 1, "price": "19.99", "cost": 7}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &detail))

	product := MapProduct(detail)
	require.Len(t, product.Variants, 1)
	assert.InDelta(t, 19.99, product.Variants[0].Price, 0.0001)
	assert.InDelta(t, 7, product.Variants[0].Cost, 0.0001)
}
