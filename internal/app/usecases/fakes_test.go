package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/domain/model"
)

type fakeCatalog struct {
	mu            sync.Mutex
	products      []model.Product
	details       map[string]model.Product
	listErr       error
	detailErr     map[string]error
	listAllCalls  int
	detailCalls   int
	createdOrders []model.FulfillmentOrder
	orderID       string
	statusUpdates map[string]string
}

func newFakeCatalog(products ...model.Product) *fakeCatalog {
	return &fakeCatalog{
		products:      products,
		details:       map[string]model.Product{},
		detailErr:     map[string]error{},
		orderID:       "po-1",
		statusUpdates: map[string]string{},
	}
}

func (f *fakeCatalog) ListProducts(ctx context.Context, page, limit int) ([]model.Product, error) {
	if page > 1 {
		return nil, nil
	}
	return f.ListAllProducts(ctx)
}

func (f *fakeCatalog) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.listAllCalls++
	return append([]model.Product(nil), f.products...), nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErr[id]; err != nil {
		return model.Product{}, err
	}
	detail, ok := f.details[id]
	if !ok {
		return model.Product{}, fmt.Errorf("no such product %s", id)
	}
	return detail, nil
}

func (f *fakeCatalog) CreateOrder(ctx context.Context, order model.FulfillmentOrder) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdOrders = append(f.createdOrders, order)
	return f.orderID, nil
}

func (f *fakeCatalog) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates[orderID] = status
	return nil
}

type fakeStorefront struct {
	mu          sync.Mutex
	nextID      int
	products    map[string]model.SureProduct
	prices      map[string][]model.SurePrice
	variants    map[string][]model.SureVariant
	media       map[string][]string
	orders      map[string]*model.SureOrder
	createErrs  map[string]error
	createCalls int
	updateCalls int
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		products:   map[string]model.SureProduct{},
		prices:     map[string][]model.SurePrice{},
		variants:   map[string][]model.SureVariant{},
		media:      map[string][]string{},
		orders:     map[string]*model.SureOrder{},
		createErrs: map[string]error{},
	}
}

func (f *fakeStorefront) FindByPrintifyID(ctx context.Context, printifyID string) (*model.SureProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Metadata[model.MetaPrintifyID] == printifyID {
			found := p
			return &found, nil
		}
	}
	return nil, surecart.ErrNotFound
}

func (f *fakeStorefront) CreateProduct(ctx context.Context, product model.SureProduct) (*model.SureProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if err := f.createErrs[product.Metadata[model.MetaPrintifyID]]; err != nil {
		return nil, err
	}
	f.nextID++
	product.ID = fmt.Sprintf("sc-%d", f.nextID)
	f.products[product.ID] = product
	return &product, nil
}

func (f *fakeStorefront) UpdateProduct(ctx context.Context, id string, product model.SureProduct) (*model.SureProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if _, ok := f.products[id]; !ok {
		return nil, fmt.Errorf("no such surecart product %s", id)
	}
	product.ID = id
	f.products[id] = product
	return &product, nil
}

func (f *fakeStorefront) UpsertPrices(ctx context.Context, productID string, prices []model.SurePrice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[productID] = append([]model.SurePrice(nil), prices...)
	return nil
}

func (f *fakeStorefront) UpsertVariants(ctx context.Context, productID string, variants []model.SureVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variants[productID] = append([]model.SureVariant(nil), variants...)
	return nil
}

func (f *fakeStorefront) AttachMedia(ctx context.Context, productID, imageURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[productID] = append(f.media[productID], imageURL)
	return true
}

func (f *fakeStorefront) GetOrder(ctx context.Context, orderID string) (*model.SureOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, surecart.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// stepClock hands out times a fixed stride apart, for exercising the
// wall-clock budget without sleeping.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.t
	c.t = c.t.Add(c.step)
	return current
}

func catalogProduct(id, title string, variantIDs ...int64) model.Product {
	p := model.Product{ID: id, Title: title}
	for _, vid := range variantIDs {
		p.Variants = append(p.Variants, model.Variant{
			ID:     vid,
			Title:  fmt.Sprintf("Variant %d", vid),
			Price:  19.99,
			Active: true,
		})
	}
	return p
}
