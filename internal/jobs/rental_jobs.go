package jobs

import (
	"context"

	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/pricing"
)

// MarkOverdueTransactions moves being_rented transactions past their end date
// to awaiting_return.
func (jr *JobRunner) MarkOverdueTransactions() {
	_ = jr.markOverdueTransactions()
}

func (jr *JobRunner) markOverdueTransactions() error {
	return jr.runWithRecovery("MarkOverdueTransactions", func(ctx context.Context) error {
		moved, err := jr.services.Transactions.MarkOverdue(ctx)
		if err != nil {
			return err
		}

		logger.Info("Marked transactions as awaiting return", "count", len(moved))
		for _, t := range moved {
			logger.Debug("Marked transaction as overdue",
				"transaction_id", t.ID,
				"code", t.Code,
				"user_id", t.UserID,
				"end_date", t.EndDate.Format(pricing.DateLayout))
		}
		return nil
	})
}
