package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"gearrent-backend/internal/clock"
	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/pricing"
	"gearrent-backend/internal/repository"
)

type transactionService struct {
	txm         repository.TxManager
	txRepo      repository.TransactionRepository
	itemRepo    repository.ItemRepository
	promoRepo   repository.PromotionRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
	clock       clock.Clock
	rules       RentalRules
}

func NewTransactionService(
	txm repository.TxManager,
	txRepo repository.TransactionRepository,
	itemRepo repository.ItemRepository,
	promoRepo repository.PromotionRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	clk clock.Clock,
	rules RentalRules,
) TransactionService {
	return &transactionService{
		txm:         txm,
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		promoRepo:   promoRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		clock:       clk,
		rules:       rules,
	}
}

// transactionCode renders TRX-YYYYMMDD-NNNN.
func transactionCode(day time.Time, seq int32) string {
	return fmt.Sprintf("TRX-%s-%04d", day.Format("20060102"), seq)
}

func (s *transactionService) CreateTransaction(ctx context.Context, userID int32, startDate, endDate time.Time, reqs []domain.LineRequest, promoCode string) (*domain.Transaction, error) {
	method := "transactionService.CreateTransaction"
	logger.EnterMethod(method, "userID", userID, "lines", len(reqs))

	days, err := pricing.RentalDays(startDate, endDate)
	if err != nil {
		logger.ExitMethodWithError(method, err, "userID", userID)
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyTransaction
	}

	now := s.clock.Now()
	t := &domain.Transaction{
		UserID:    userID,
		BookedAt:  now,
		StartDate: pricing.DateOnly(startDate),
		EndDate:   pricing.DateOnly(endDate),
		Days:      days,
		Status:    domain.TransactionStatusAwaitingPayment,
	}

	requested := make(map[int32]int32, len(reqs))
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: %w", req.ItemID, domain.ErrInvalidQuantity)
		}
		item, err := s.itemRepo.GetByID(ctx, req.ItemID)
		if err != nil {
			logger.ExitMethodWithError(method, err, "itemID", req.ItemID)
			return nil, err
		}
		if item.PricePerDay <= 0 {
			return nil, fmt.Errorf("%s: %w", item.Name, domain.ErrInvalidPrice)
		}
		if !item.Status.Rentable() {
			return nil, fmt.Errorf("%s is %s: %w", item.Name, item.Status, domain.ErrItemNotRentable)
		}
		// Repeated lines for the same item draw from one stock count.
		requested[item.ID] += req.Quantity
		if requested[item.ID] > item.Stock {
			return nil, fmt.Errorf("%s: requested %d, %d in stock: %w", item.Name, requested[item.ID], item.Stock, domain.ErrInsufficientStock)
		}

		subtotal := pricing.LineSubtotal(item.PricePerDay, req.Quantity, days)
		t.Lines = append(t.Lines, domain.TransactionLine{
			ItemID:      item.ID,
			ItemName:    item.Name,
			Quantity:    req.Quantity,
			PricePerDay: item.PricePerDay,
			Subtotal:    subtotal,
		})
		t.Subtotal += subtotal
	}

	if code := domain.NormalizePromoCode(promoCode); code != "" {
		promo, err := s.promoRepo.GetByCode(ctx, code)
		if err != nil {
			logger.ExitMethodWithError(method, err, "promoCode", code)
			return nil, err
		}
		discount, err := pricing.EvaluatePromotion(promo, t.Subtotal, pricing.DateOnly(now), s.rules.EnforceMinSpend)
		if err != nil {
			return nil, err
		}
		t.Discount = discount
		t.PromoCode = &code
	}
	t.RecomputeTotal()

	err = s.txm.WithTx(ctx, func(ctx context.Context) error {
		seq, err := s.txRepo.NextSequence(ctx, now)
		if err != nil {
			return err
		}
		t.Code = transactionCode(now, seq)
		return s.txRepo.Create(ctx, t)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "userID", userID)
		return nil, err
	}

	logger.InfoContext(ctx, "Transaction created", "id", t.ID, "code", t.Code, "userID", userID, "total", t.Total)
	s.notifyStatus(ctx, t)
	logger.ExitMethod(method, "id", t.ID)
	return t, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id int32) (*domain.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *transactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, st)
		}
	}
	return s.txRepo.List(ctx, filter)
}

func (s *transactionService) DeleteTransaction(ctx context.Context, id int32) error {
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus, lateFee *int64) (*domain.Transaction, error) {
	if lateFee != nil && status != domain.TransactionStatusCompleted {
		return nil, fmt.Errorf("%w: late_fee only applies when completing a transaction", domain.ErrValidation)
	}
	switch status {
	case domain.TransactionStatusAwaitingConfirmation:
		return s.ConfirmPayment(ctx, id)
	case domain.TransactionStatusBeingRented:
		return s.Handover(ctx, id)
	case domain.TransactionStatusAwaitingReturn:
		return s.transition(ctx, id, status, transitionOptions{})
	case domain.TransactionStatusCompleted:
		return s.Inspect(ctx, id, nil, lateFee)
	case domain.TransactionStatusCancelled:
		return s.Cancel(ctx, 0, id)
	}
	return nil, fmt.Errorf("%w: cannot move to %q", domain.ErrInvalidTransition, status)
}

func (s *transactionService) SubmitPayment(ctx context.Context, userID, transactionID int32, method string, amount int64, reference string) (*domain.Transaction, *domain.Payment, error) {
	if amount <= 0 {
		return nil, nil, domain.ErrInvalidPaymentAmount
	}
	payment := &domain.Payment{
		Method:    method,
		Amount:    amount,
		Reference: reference,
		Status:    domain.PaymentStatusPending,
		PaidAt:    s.clock.Now(),
	}
	t, err := s.transition(ctx, transactionID, domain.TransactionStatusAwaitingConfirmation, transitionOptions{
		userID:  userID,
		payment: payment,
	})
	if err != nil {
		return nil, nil, err
	}
	return t, payment, nil
}

func (s *transactionService) ListPayments(ctx context.Context, transactionID int32) ([]domain.Payment, error) {
	return s.paymentRepo.ListByTransaction(ctx, transactionID)
}

func (s *transactionService) ConfirmPayment(ctx context.Context, id int32) (*domain.Transaction, error) {
	return s.transition(ctx, id, domain.TransactionStatusAwaitingConfirmation, transitionOptions{})
}

func (s *transactionService) Handover(ctx context.Context, id int32) (*domain.Transaction, error) {
	return s.transition(ctx, id, domain.TransactionStatusBeingRented, transitionOptions{})
}

func (s *transactionService) RequestReturn(ctx context.Context, userID, id int32) (*domain.Transaction, error) {
	return s.transition(ctx, id, domain.TransactionStatusAwaitingReturn, transitionOptions{userID: userID})
}

func (s *transactionService) Inspect(ctx context.Context, id int32, conditions map[int32]domain.InspectionCondition, lateFee *int64) (*domain.Transaction, error) {
	if lateFee != nil && *lateFee < 0 {
		return nil, domain.ErrInvalidLateFee
	}
	for lineID, c := range conditions {
		if !c.Valid() {
			return nil, fmt.Errorf("line %d: %q: %w", lineID, c, domain.ErrInvalidCondition)
		}
	}
	return s.transition(ctx, id, domain.TransactionStatusCompleted, transitionOptions{
		conditions: conditions,
		lateFee:    lateFee,
	})
}

// Cancel cancels a transaction. A non-zero actorID is a member acting on their
// own transaction, who may only cancel before the equipment is handed over.
func (s *transactionService) Cancel(ctx context.Context, actorID, id int32) (*domain.Transaction, error) {
	return s.transition(ctx, id, domain.TransactionStatusCancelled, transitionOptions{
		userID:         actorID,
		beforeHandover: actorID != 0,
	})
}

func (s *transactionService) MarkOverdue(ctx context.Context) ([]domain.Transaction, error) {
	method := "transactionService.MarkOverdue"
	today := pricing.DateOnly(s.clock.Now())
	logger.EnterMethod(method, "today", today.Format(pricing.DateLayout))

	moved, err := s.txRepo.MarkOverdue(ctx, today)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return nil, err
	}
	for _, t := range moved {
		logger.InfoContext(ctx, "Transaction overdue", "id", t.ID, "code", t.Code, "endDate", t.EndDate.Format(pricing.DateLayout))
	}
	logger.ExitMethod(method, "moved", len(moved))
	return moved, nil
}

type transitionOptions struct {
	// userID, when set, must own the transaction.
	userID int32
	// beforeHandover rejects the move once the items are out.
	beforeHandover bool
	payment        *domain.Payment
	conditions     map[int32]domain.InspectionCondition
	lateFee        *int64
}

// transition locks the transaction, applies the side effects of moving it to
// next and persists it, all inside one database transaction.
func (s *transactionService) transition(ctx context.Context, id int32, next domain.TransactionStatus, opts transitionOptions) (*domain.Transaction, error) {
	method := "transactionService.transition"
	logger.EnterMethod(method, "id", id, "next", next)

	var t *domain.Transaction
	err := s.txm.WithTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if opts.userID != 0 && t.UserID != opts.userID {
			return domain.ErrUnauthorized
		}
		if opts.beforeHandover && t.Status.ItemsOut() {
			return fmt.Errorf("%w: transaction is already %s", domain.ErrUnauthorized, t.Status)
		}
		if !t.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.Status, next)
		}

		switch next {
		case domain.TransactionStatusAwaitingConfirmation:
			if opts.payment != nil {
				opts.payment.TransactionID = t.ID
				err = s.paymentRepo.Create(ctx, opts.payment)
			}
		case domain.TransactionStatusBeingRented:
			err = s.takeStock(ctx, t)
		case domain.TransactionStatusCompleted:
			err = s.returnStock(ctx, t, opts)
		case domain.TransactionStatusCancelled:
			if t.Status.ItemsOut() {
				logger.WarnContext(ctx, "Cancelling transaction with items out, stock is not restored", "id", t.ID, "code", t.Code, "status", t.Status)
			}
		}
		if err != nil {
			return err
		}

		t.Status = next
		t.RecomputeTotal()
		return s.txRepo.Update(ctx, t)
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "id", id, "next", next)
		return nil, err
	}

	logger.InfoContext(ctx, "Transaction status changed", "id", t.ID, "code", t.Code, "status", t.Status, "total", t.Total)
	s.notifyStatus(ctx, t)
	logger.ExitMethod(method, "id", id)
	return t, nil
}

// takeStock decrements stock for every line on handover.
func (s *transactionService) takeStock(ctx context.Context, t *domain.Transaction) error {
	for _, i := range lockOrder(t.Lines) {
		line := t.Lines[i]
		item, err := s.itemRepo.GetByIDForUpdate(ctx, line.ItemID)
		if err != nil {
			return err
		}
		if shortfall := item.DecreaseStock(line.Quantity); shortfall > 0 {
			if s.rules.StrictStock {
				return fmt.Errorf("%s: %d unit(s) short: %w", item.Name, shortfall, domain.ErrInsufficientStock)
			}
			logger.WarnContext(ctx, "Stock clamped at zero on handover", "code", t.Code, "itemID", item.ID, "shortfall", shortfall)
		}
		if err := s.itemRepo.UpdateStock(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// returnStock restocks every line on inspection, applies condition overrides
// and settles the late fee.
func (s *transactionService) returnStock(ctx context.Context, t *domain.Transaction, opts transitionOptions) error {
	for lineID := range opts.conditions {
		if !slices.ContainsFunc(t.Lines, func(l domain.TransactionLine) bool { return l.ID == lineID }) {
			return fmt.Errorf("line %d is not part of %s: %w", lineID, t.Code, domain.ErrInvalidCondition)
		}
	}

	feeLines := make([]pricing.LateFeeLine, 0, len(t.Lines))
	for _, i := range lockOrder(t.Lines) {
		line := &t.Lines[i]
		item, err := s.itemRepo.GetByIDForUpdate(ctx, line.ItemID)
		if err != nil {
			return err
		}
		item.IncreaseStock(line.Quantity)

		if cond, ok := opts.conditions[line.ID]; ok {
			if status, override := cond.ItemStatus(); override {
				item.Status = status
			}
			if err := s.txRepo.UpdateLineCondition(ctx, line.ID, cond); err != nil {
				return err
			}
			line.Condition = &cond
		}

		if err := s.itemRepo.UpdateStock(ctx, item); err != nil {
			return err
		}
		feeLines = append(feeLines, pricing.LateFeeLine{LateFeePerDay: item.LateFeePerDay, Quantity: line.Quantity})
	}

	if opts.lateFee != nil {
		t.LateFee = *opts.lateFee
	} else {
		t.LateFee = pricing.ComputeLateFee(t.EndDate, pricing.DateOnly(s.clock.Now()), feeLines)
	}
	return nil
}

// lockOrder returns line indexes sorted by item ID so concurrent transitions
// lock item rows in the same order.
func lockOrder(lines []domain.TransactionLine) []int {
	idx := make([]int, len(lines))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(lines[a].ItemID, lines[b].ItemID)
	})
	return idx
}

func (s *transactionService) notifyStatus(ctx context.Context, t *domain.Transaction) {
	if s.emailSvc == nil || s.userRepo == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, t.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping transaction notification", "code", t.Code, "error", err)
		return
	}
	if err := s.emailSvc.SendTransactionStatusNotification(ctx, user.Email, user.Name, t.Code, t.Status, t.Total); err != nil {
		logger.WarnContext(ctx, "Failed to send transaction notification", "code", t.Code, "error", err)
	}
}
