package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/domain/model"
	"printify-surecart-sync/internal/storage"
)

func sureOrder(id, status string) *model.SureOrder {
	return &model.SureOrder{
		ID:     id,
		Number: "1001",
		Status: status,
		Customer: &model.OrderCustomer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		ShippingAddress: &model.OrderAddress{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Line1:      "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
	}
}

func TestSyncOrderMixedRecognition(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	catalog.details["p2"] = catalogProduct("p2", "Two", 202)
	store := newFakeStorefront()
	refs := storage.NewMemoryOrderRefStore()

	order := sureOrder("ord-1", "paid")
	order.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{"color": "red"}},
		{
			Quantity: 2,
			Product:  map[string]string{model.MetaPrintifyID: "p1"},
			Variant:  map[string]string{model.MetaPrintifyVariantID: "101"},
		},
		{
			// No pinned variant: the product's first one is used.
			Quantity: 0,
			Product:  map[string]string{model.MetaPrintifyID: "p2"},
		},
	}
	store.orders["ord-1"] = order

	svc := NewSyncOrder(catalog, store, refs, nil)

	printifyOrderID, err := svc.SyncOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "po-1", printifyOrderID)

	require.Len(t, catalog.createdOrders, 1)
	created := catalog.createdOrders[0]
	assert.Equal(t, "ord-1", created.ExternalID)
	assert.Equal(t, "SureCart Order #1001", created.Label)
	require.Len(t, created.LineItems, 2)
	assert.Equal(t, model.FulfillmentItem{ProductID: "p1", VariantID: 101, Quantity: 2}, created.LineItems[0])
	assert.Equal(t, model.FulfillmentItem{ProductID: "p2", VariantID: 202, Quantity: 1}, created.LineItems[1])
	assert.Equal(t, "1 Main St", created.ShippingAddress.Address1)
	assert.Equal(t, "ada@example.com", created.ShippingAddress.Email)

	saved, err := refs.PrintifyOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "po-1", saved)

	notes, err := refs.Notes(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "po-1")
}

func TestSyncOrderNoRecognizedProducts(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()
	refs := storage.NewMemoryOrderRefStore()

	order := sureOrder("ord-2", "paid")
	order.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{"sku": "local-1"}},
	}
	store.orders["ord-2"] = order

	svc := NewSyncOrder(catalog, store, refs, nil)

	_, err := svc.SyncOrder(ctx, "ord-2")
	assert.ErrorIs(t, err, ErrNoPrintifyProducts)
	assert.Empty(t, catalog.createdOrders)

	saved, err := refs.PrintifyOrderID(ctx, "ord-2")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSyncOrderVariantLookupFailureSkipsItem(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	catalog.detailErr["p9"] = errors.New("printify down")
	store := newFakeStorefront()

	order := sureOrder("ord-3", "paid")
	order.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{model.MetaPrintifyID: "p9"}},
	}
	store.orders["ord-3"] = order

	svc := NewSyncOrder(catalog, store, storage.NewMemoryOrderRefStore(), nil)

	_, err := svc.SyncOrder(ctx, "ord-3")
	assert.ErrorIs(t, err, ErrNoPrintifyProducts)
}

func TestSyncOrderAlreadySynced(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()
	refs := storage.NewMemoryOrderRefStore()
	require.NoError(t, refs.SavePrintifyOrderID(ctx, "ord-4", "po-old"))

	order := sureOrder("ord-4", "paid")
	order.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{model.MetaPrintifyID: "p1"}, Variant: map[string]string{model.MetaPrintifyVariantID: "101"}},
	}
	store.orders["ord-4"] = order

	svc := NewSyncOrder(catalog, store, refs, nil)

	_, err := svc.SyncOrder(ctx, "ord-4")
	assert.ErrorIs(t, err, ErrAlreadySynced)
	assert.Empty(t, catalog.createdOrders)
}

func TestSyncOrderMissingOrder(t *testing.T) {
	svc := NewSyncOrder(newFakeCatalog(), newFakeStorefront(), storage.NewMemoryOrderRefStore(), nil)

	_, err := svc.SyncOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, surecart.ErrNotFound)
}

func TestHandleOrderCreatedStatusGate(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()
	refs := storage.NewMemoryOrderRefStore()

	draft := sureOrder("ord-5", "draft")
	draft.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{model.MetaPrintifyID: "p1"}, Variant: map[string]string{model.MetaPrintifyVariantID: "101"}},
	}
	store.orders["ord-5"] = draft

	svc := NewSyncOrder(catalog, store, refs, nil)

	require.NoError(t, svc.HandleOrderCreated(ctx, "ord-5"))
	assert.Empty(t, catalog.createdOrders)

	draft.Status = "paid"
	require.NoError(t, svc.HandleOrderCreated(ctx, "ord-5"))
	assert.Len(t, catalog.createdOrders, 1)

	// Replayed webhook: already synced, silently ignored.
	require.NoError(t, svc.HandleOrderCreated(ctx, "ord-5"))
	assert.Len(t, catalog.createdOrders, 1)
}

func TestHandleOrderUpdatedPushesStatus(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()
	refs := storage.NewMemoryOrderRefStore()
	require.NoError(t, refs.SavePrintifyOrderID(ctx, "ord-6", "po-6"))

	store.orders["ord-6"] = sureOrder("ord-6", "completed")

	svc := NewSyncOrder(catalog, store, refs, nil)

	require.NoError(t, svc.HandleOrderUpdated(ctx, "ord-6"))
	assert.Equal(t, "completed", catalog.statusUpdates["po-6"])

	notes, err := refs.Notes(ctx, "ord-6")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "completed")
}

func TestHandleOrderUpdatedUnmappedStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()
	store.orders["ord-7"] = sureOrder("ord-7", "draft")

	svc := NewSyncOrder(catalog, store, storage.NewMemoryOrderRefStore(), nil)

	require.NoError(t, svc.HandleOrderUpdated(ctx, "ord-7"))
	assert.Empty(t, catalog.statusUpdates)
	assert.Empty(t, catalog.createdOrders)
}

func TestHandleOrderUpdatedSyncsUnsyncedOrder(t *testing.T) {
	ctx := context.Background()
	catalog := newFakeCatalog()
	store := newFakeStorefront()

	order := sureOrder("ord-8", "paid")
	order.LineItems = []model.OrderLineItem{
		{Quantity: 1, Product: map[string]string{model.MetaPrintifyID: "p1"}, Variant: map[string]string{model.MetaPrintifyVariantID: "101"}},
	}
	store.orders["ord-8"] = order

	svc := NewSyncOrder(catalog, store, storage.NewMemoryOrderRefStore(), nil)

	require.NoError(t, svc.HandleOrderUpdated(ctx, "ord-8"))
	assert.Len(t, catalog.createdOrders, 1)
	assert.Empty(t, catalog.statusUpdates)
}

func TestBuildShippingAddressFallbacks(t *testing.T) {
	billingOnly := &model.SureOrder{
		ID:       "o1",
		Customer: &model.OrderCustomer{Email: "c@example.com"},
		BillingAddress: &model.OrderAddress{
			FirstName:  "Bill",
			Line1:      "2 Oak Ave",
			City:       "Metropolis",
			PostalCode: "10001",
			Country:    "CA",
		},
	}
	addr := buildShippingAddress(billingOnly)
	assert.Equal(t, "Bill", addr.FirstName)
	assert.Equal(t, "2 Oak Ave", addr.Address1)
	assert.Equal(t, "CA", addr.Country)
	assert.Equal(t, "c@example.com", addr.Email)

	customerOnly := &model.SureOrder{
		ID:       "o2",
		Customer: &model.OrderCustomer{FirstName: "Cara", LastName: "Doe", Phone: "555"},
	}
	addr = buildShippingAddress(customerOnly)
	assert.Equal(t, "Cara", addr.FirstName)
	assert.Equal(t, "555", addr.Phone)
	assert.Equal(t, "US", addr.Country)
}

func TestParseVariantID(t *testing.T) {
	assert.Equal(t, int64(101), parseVariantID("101"))
	assert.Equal(t, int64(101), parseVariantID(" 101 "))
	assert.Equal(t, int64(0), parseVariantID(""))
	assert.Equal(t, int64(0), parseVariantID("abc"))
}
