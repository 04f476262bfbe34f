package jobs

import (
	"context"

	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/pricing"
)

// SendOverdueReminders emails members whose equipment is past due, with the
// late fee accrued so far.
func (jr *JobRunner) SendOverdueReminders() {
	_ = jr.sendOverdueReminders()
}

func (jr *JobRunner) sendOverdueReminders() error {
	return jr.runWithRecovery("SendOverdueReminders", func(ctx context.Context) error {
		today := pricing.DateOnly(jr.clock.Now())
		notices, err := jr.txRepo.ListOverdueNotices(ctx, today)
		if err != nil {
			return err
		}

		sent, failed := 0, 0
		for _, n := range notices {
			days := pricing.OverdueDays(n.EndDate, today)
			fee := n.LateFeePerDay * int64(days)
			if err := jr.services.Email.SendOverdueReminder(ctx, n, days, fee); err != nil {
				logger.Error("Failed to send overdue reminder", "transaction_id", n.TransactionID, "email", n.Email, "error", err)
				failed++
				continue
			}
			sent++
		}

		logger.Info("Sent overdue reminders", "sent", sent, "failed", failed)
		return nil
	})
}
