package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"printify-surecart-sync/internal/adapters/printify"
	"printify-surecart-sync/internal/adapters/surecart"
	"printify-surecart-sync/internal/domain/model"
	"printify-surecart-sync/internal/storage"
)

var (
	// ErrNoPrintifyProducts means no line item referenced a synced product;
	// no upstream order is created in that case.
	ErrNoPrintifyProducts = errors.New("no printify products found in order")
	ErrAlreadySynced      = errors.New("order already synced to printify")
)

// SyncOrderService bridges SureCart order events to Printify fulfillment.
type SyncOrderService interface {
	SyncOrder(ctx context.Context, orderID string) (string, error)
	HandleOrderCreated(ctx context.Context, orderID string) error
	HandleOrderUpdated(ctx context.Context, orderID string) error
}

type SyncOrder struct {
	catalog printify.CatalogService
	store   surecart.StorefrontService
	refs    storage.OrderRefStore
	logger  *zap.Logger
}

func NewSyncOrder(
	catalog printify.CatalogService,
	store surecart.StorefrontService,
	refs storage.OrderRefStore,
	logger *zap.Logger,
) *SyncOrder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncOrder{
		catalog: catalog,
		store:   store,
		refs:    refs,
		logger:  logger,
	}
}

// SyncOrder creates the Printify fulfillment order for one SureCart order
// and persists the cross-reference. Line items without a recognized printify
// product are skipped, not errors.
func (s *SyncOrder) SyncOrder(ctx context.Context, orderID string) (string, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	if existing, err := s.refs.PrintifyOrderID(ctx, order.ID); err != nil {
		return "", err
	} else if existing != "" {
		return "", fmt.Errorf("%w (id: %s)", ErrAlreadySynced, existing)
	}

	lineItems, err := s.buildLineItems(ctx, order)
	if err != nil {
		return "", err
	}
	if len(lineItems) == 0 {
		return "", ErrNoPrintifyProducts
	}

	fulfillment := model.FulfillmentOrder{
		ExternalID:       order.ID,
		Label:            "SureCart Order #" + order.Number,
		LineItems:        lineItems,
		ShippingMethod:   1,
		ShippingAddress:  buildShippingAddress(order),
		SendShippingNote: true,
	}

	printifyOrderID, err := s.catalog.CreateOrder(ctx, fulfillment)
	if err != nil {
		return "", fmt.Errorf("printify order create: %w", err)
	}

	if err := s.refs.SavePrintifyOrderID(ctx, order.ID, printifyOrderID); err != nil {
		return "", err
	}
	if err := s.refs.AppendNote(ctx, order.ID, fmt.Sprintf("Order synced to Printify (ID: %s)", printifyOrderID)); err != nil {
		s.logger.Warn("order note append failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("order synced to printify",
		zap.String("order_id", order.ID),
		zap.String("printify_order_id", printifyOrderID),
		zap.Int("line_items", len(lineItems)))

	return printifyOrderID, nil
}

// HandleOrderCreated reacts to a new order: only paid or processing orders
// are forwarded, and already-synced ones are left alone.
func (s *SyncOrder) HandleOrderCreated(ctx context.Context, orderID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != "paid" && order.Status != "processing" {
		return nil
	}

	if existing, err := s.refs.PrintifyOrderID(ctx, order.ID); err != nil {
		return err
	} else if existing != "" {
		return nil
	}

	_, err = s.SyncOrder(ctx, orderID)
	return err
}

// HandleOrderUpdated pushes a status change for synced orders and creates
// the upstream order for relevant ones that were never synced. Statuses
// outside the mapping table are no-ops.
func (s *SyncOrder) HandleOrderUpdated(ctx context.Context, orderID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	mapped := model.MapOrderStatus(order.Status)
	if mapped == "" {
		return nil
	}

	printifyOrderID, err := s.refs.PrintifyOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	if printifyOrderID == "" {
		_, err := s.SyncOrder(ctx, orderID)
		return err
	}

	if err := s.catalog.UpdateOrderStatus(ctx, printifyOrderID, mapped); err != nil {
		return fmt.Errorf("printify status update: %w", err)
	}
	if err := s.refs.AppendNote(ctx, order.ID, fmt.Sprintf("Order status updated in Printify to: %s", mapped)); err != nil {
		s.logger.Warn("order note append failed", zap.String("order_id", order.ID), zap.Error(err))
	}
	return nil
}

func (s *SyncOrder) buildLineItems(ctx context.Context, order *model.SureOrder) ([]model.FulfillmentItem, error) {
	var items []model.FulfillmentItem
	for _, item := range order.LineItems {
		productID := strings.TrimSpace(item.Product[model.MetaPrintifyID])
		if productID == "" {
			continue
		}

		variantID := parseVariantID(item.Variant[model.MetaPrintifyVariantID])
		if variantID == 0 {
			// Order didn't pin a variant: fall back to the product's first
			// available one.
			detail, err := s.catalog.GetProduct(ctx, productID)
			if err != nil {
				s.logger.Warn("variant lookup failed, skipping line item",
					zap.String("product_id", productID),
					zap.Error(err))
				continue
			}
			if len(detail.Variants) > 0 {
				variantID = detail.Variants[0].ID
			}
		}
		if variantID == 0 {
			continue
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, model.FulfillmentItem{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
		})
	}
	return items, nil
}

func parseVariantID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// buildShippingAddress prefers the shipping address, then billing, then the
// bare customer record. Country defaults to US as the original did.
func buildShippingAddress(order *model.SureOrder) model.ShippingAddress {
	addr := model.ShippingAddress{Country: "US"}

	if order.Customer != nil {
		addr.Email = order.Customer.Email
	}

	source := order.ShippingAddress
	if source == nil {
		source = order.BillingAddress
	}
	if source != nil {
		addr.FirstName = source.FirstName
		addr.LastName = source.LastName
		addr.Address1 = source.Line1
		addr.Address2 = source.Line2
		addr.City = source.City
		addr.Region = source.State
		addr.Zip = source.PostalCode
		addr.Phone = source.Phone
		if source.Country != "" {
			addr.Country = source.Country
		}
		return addr
	}

	if order.Customer != nil {
		addr.FirstName = order.Customer.FirstName
		addr.LastName = order.Customer.LastName
		addr.Phone = order.Customer.Phone
	}
	return addr
}
