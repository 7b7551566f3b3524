package saleorapp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CourseBridge/internal/domain/fulfillment"
	"CourseBridge/internal/domain/order"
	"CourseBridge/internal/external/saleor"
	"CourseBridge/pkg/logger"
)

var _ fulfillment.OrderFulfiller = (*Fulfiller)(nil)

// FulfillAPI is the slice of the Saleor client order fulfillment uses.
type FulfillAPI interface {
	GetWarehouses(ctx context.Context, limit int) ([]saleor.NamedNode, error)
	FulfillOrder(ctx context.Context, orderID string, lines []saleor.OrderFulfillLine) ([]saleor.Fulfillment, error)
}

// Fulfiller marks orders fulfilled in Saleor once enrollment has completed.
// Course products are digital, so every line is fulfilled from the first
// warehouse Saleor reports.
type Fulfiller struct {
	api FulfillAPI
	log *logger.Logger

	mu          sync.Mutex
	warehouseID string
}

func NewFulfiller(api FulfillAPI, l *logger.Logger) *Fulfiller {
	return &Fulfiller{api: api, log: l}
}

func (f *Fulfiller) FulfillOrder(ctx context.Context, ord order.Order) error {
	warehouseID, err := f.warehouse(ctx)
	if err != nil {
		return err
	}

	lines := make([]saleor.OrderFulfillLine, 0, len(ord.Lines))
	for _, line := range ord.Lines {
		lines = append(lines, saleor.OrderFulfillLine{
			OrderLineID: line.ID,
			Stocks: []saleor.FulfillmentStock{
				{Quantity: line.Quantity, Warehouse: warehouseID},
			},
		})
	}

	fulfillments, err := f.api.FulfillOrder(ctx, ord.ID, lines)
	if err != nil {
		return fmt.Errorf("fulfill order: %w", err)
	}

	f.log.DebugCtx(ctx, "Order %s fulfilled in Saleor, %d fulfillment(s)", ord.ID, len(fulfillments))
	return nil
}

func (f *Fulfiller) warehouse(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.warehouseID != "" {
		return f.warehouseID, nil
	}

	warehouses, err := f.api.GetWarehouses(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("list warehouses: %w", err)
	}
	if len(warehouses) == 0 {
		return "", errors.New("no warehouse configured in saleor")
	}

	f.warehouseID = warehouses[0].ID
	return f.warehouseID, nil
}
