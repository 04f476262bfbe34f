package service

import (
	"context"
	"fmt"

	"gearrent-backend/internal/clock"
	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/pricing"
	"gearrent-backend/internal/repository"
)

type promotionService struct {
	promoRepo repository.PromotionRepository
	clock     clock.Clock
	rules     RentalRules
}

func NewPromotionService(promoRepo repository.PromotionRepository, clk clock.Clock, rules RentalRules) PromotionService {
	return &promotionService{
		promoRepo: promoRepo,
		clock:     clk,
		rules:     rules,
	}
}

func (s *promotionService) CreatePromotion(ctx context.Context, promo *domain.Promotion) error {
	if err := validatePromotion(promo); err != nil {
		return err
	}
	return s.promoRepo.Create(ctx, promo)
}

func (s *promotionService) UpdatePromotion(ctx context.Context, promo *domain.Promotion) error {
	if err := validatePromotion(promo); err != nil {
		return err
	}
	return s.promoRepo.Update(ctx, promo)
}

func (s *promotionService) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	return s.promoRepo.List(ctx)
}

func (s *promotionService) GetActivePromotion(ctx context.Context, code string) (*domain.Promotion, error) {
	promo, err := s.promoRepo.GetByCode(ctx, domain.NormalizePromoCode(code))
	if err != nil {
		return nil, err
	}
	if !pricing.PromotionActiveOn(promo, s.clock.Now()) {
		return nil, domain.ErrPromoNotFound
	}
	return promo, nil
}

func (s *promotionService) ValidatePromotion(ctx context.Context, code string, subtotal int64) (*domain.Promotion, int64, error) {
	promo, err := s.promoRepo.GetByCode(ctx, domain.NormalizePromoCode(code))
	if err != nil {
		return nil, 0, err
	}
	discount, err := pricing.EvaluatePromotion(promo, subtotal, s.clock.Now(), s.rules.EnforceMinSpend)
	if err != nil {
		return nil, 0, err
	}
	return promo, discount, nil
}

func validatePromotion(p *domain.Promotion) error {
	p.Code = domain.NormalizePromoCode(p.Code)
	if p.Code == "" {
		return fmt.Errorf("%w: promotion code is required", domain.ErrValidation)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: discount kind must be percentage or fixed", domain.ErrValidation)
	}
	if p.Value <= 0 {
		return fmt.Errorf("%w: discount value must be positive", domain.ErrValidation)
	}
	if p.Kind == domain.DiscountPercentage && p.Value > 100 {
		return fmt.Errorf("%w: percentage discount cannot exceed 100", domain.ErrValidation)
	}
	if p.Kind == domain.DiscountFixed {
		p.MaxDiscount = nil
	}
	if p.MinSpend < 0 {
		return fmt.Errorf("%w: minimum spend cannot be negative", domain.ErrValidation)
	}
	if p.EndDate.Before(p.StartDate) {
		return domain.ErrInvalidDateRange
	}
	return nil
}
