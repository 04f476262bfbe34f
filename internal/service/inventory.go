package service

import (
	"context"
	"fmt"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/repository"
)

type inventoryService struct {
	txm      repository.TxManager
	itemRepo repository.ItemRepository
}

func NewInventoryService(txm repository.TxManager, itemRepo repository.ItemRepository) InventoryService {
	return &inventoryService{txm: txm, itemRepo: itemRepo}
}

// AdjustStock applies a manual stock correction. A decrease larger than the
// stock clamps at zero and reports the shortfall instead of failing.
func (s *inventoryService) AdjustStock(ctx context.Context, itemID int32, direction domain.StockDirection, qty int32) (*domain.StockAdjustment, error) {
	method := "inventoryService.AdjustStock"
	logger.EnterMethod(method, "itemID", itemID, "direction", direction, "qty", qty)

	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if direction != domain.StockIncrease && direction != domain.StockDecrease {
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidQuantity, direction)
	}

	adj := &domain.StockAdjustment{Direction: direction, Quantity: qty}
	err := s.txm.WithTx(ctx, func(ctx context.Context) error {
		item, err := s.itemRepo.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if direction == domain.StockIncrease {
			item.IncreaseStock(qty)
		} else {
			adj.Shortfall = item.DecreaseStock(qty)
		}
		adj.Item = item
		return s.itemRepo.UpdateStock(ctx, item)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "itemID", itemID)
		return nil, err
	}

	if adj.Shortfall > 0 {
		logger.WarnContext(ctx, "Stock decrease clamped at zero", "itemID", itemID, "requested", qty, "shortfall", adj.Shortfall)
	}
	logger.ExitMethod(method, "itemID", itemID, "stock", adj.Item.Stock, "status", adj.Item.Status)
	return adj, nil
}
