package service

import (
	"context"
	"fmt"
	"strings"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type catalogService struct {
	txm          repository.TxManager
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
}

func NewCatalogService(txm repository.TxManager, categoryRepo repository.CategoryRepository, itemRepo repository.ItemRepository) CatalogService {
	return &catalogService{
		txm:          txm,
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	return s.categoryRepo.Create(ctx, category)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := s.validateItem(ctx, item); err != nil {
		return err
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusAvailable
	}
	item.ReconcileStatus()
	return s.itemRepo.Create(ctx, item)
}

func (s *catalogService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

// UpdateItem merges the descriptive fields of item onto the stored row. An
// empty status or code keeps the stored value. Stock only moves through
// AdjustStock and the rental flow, so item.Stock is ignored. On success item
// holds the merged row.
func (s *catalogService) UpdateItem(ctx context.Context, item *domain.Item) error {
	return s.txm.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.itemRepo.GetByIDForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		if item.Code != "" {
			current.Code = item.Code
		}
		current.Name = item.Name
		current.CategoryID = item.CategoryID
		current.Description = item.Description
		current.PricePerDay = item.PricePerDay
		current.LateFeePerDay = item.LateFeePerDay
		if item.Status != "" {
			current.Status = item.Status
		}

		if err := s.validateItem(ctx, current); err != nil {
			return err
		}
		current.ReconcileStatus()
		if err := s.itemRepo.Update(ctx, current); err != nil {
			return err
		}
		*item = *current
		return nil
	})
}

func (s *catalogService) DeleteItem(ctx context.Context, id int32) error {
	return s.itemRepo.Delete(ctx, id)
}

func (s *catalogService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid item status filter", domain.ErrValidation)
	}
	return s.itemRepo.List(ctx, filter)
}

func (s *catalogService) validateItem(ctx context.Context, item *domain.Item) error {
	if item.PricePerDay <= 0 {
		return domain.ErrInvalidPrice
	}
	if item.LateFeePerDay < 0 {
		return domain.ErrInvalidLateFee
	}
	if item.Stock < 0 {
		return domain.ErrInvalidQuantity
	}
	if item.Status != "" && !item.Status.Valid() {
		return fmt.Errorf("%w: invalid item status", domain.ErrValidation)
	}
	if item.CategoryID != 0 {
		if _, err := s.categoryRepo.GetByID(ctx, item.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
