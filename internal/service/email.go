package service

import (
	"context"
	"fmt"
	"strings"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/notify"
	"gearrent-backend/internal/pricing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type emailService struct {
	mailer  notify.Mailer
	printer *message.Printer
}

func NewEmailService(mailer notify.Mailer) EmailService {
	return &emailService{
		mailer:  mailer,
		printer: message.NewPrinter(language.Indonesian),
	}
}

// rupiah formats an amount with Indonesian digit grouping, e.g. Rp150.000.
func (s *emailService) rupiah(amount int64) string {
	return s.printer.Sprintf("Rp%d", amount)
}

func (s *emailService) SendAccountStatusNotification(ctx context.Context, email, name string, status domain.VerificationStatus) error {
	subject := "Gearrent account update"

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	switch status {
	case domain.VerificationApproved:
		b.WriteString("Your account has been verified. You can now log in and book equipment.")
	case domain.VerificationRejected:
		b.WriteString("Unfortunately your account could not be verified. Please contact us for details.")
	default:
		fmt.Fprintf(&b, "Your account status is now: %s.", status)
	}
	b.WriteString("\n\nBest regards,\nThe Gearrent Team")

	if err := s.mailer.Send(ctx, email, name, subject, b.String()); err != nil {
		return fmt.Errorf("failed to send account status notification: %w", err)
	}
	return nil
}

func (s *emailService) SendTransactionStatusNotification(ctx context.Context, email, name, code string, status domain.TransactionStatus, total int64) error {
	subject := fmt.Sprintf("Transaction %s: %s", code, strings.ReplaceAll(string(status), "_", " "))

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	switch status {
	case domain.TransactionStatusAwaitingPayment:
		fmt.Fprintf(&b, "Your booking %s has been created. Please pay %s to confirm it.", code, s.rupiah(total))
	case domain.TransactionStatusAwaitingConfirmation:
		fmt.Fprintf(&b, "We received your payment for %s. Your equipment will be prepared for pickup.", code)
	case domain.TransactionStatusBeingRented:
		fmt.Fprintf(&b, "The equipment for %s has been handed over. Enjoy your trip!", code)
	case domain.TransactionStatusAwaitingReturn:
		fmt.Fprintf(&b, "Transaction %s is waiting for the equipment to be returned.", code)
	case domain.TransactionStatusCompleted:
		fmt.Fprintf(&b, "Transaction %s is complete. Final total: %s.", code, s.rupiah(total))
	case domain.TransactionStatusCancelled:
		fmt.Fprintf(&b, "Transaction %s has been cancelled.", code)
	}
	b.WriteString("\n\nBest regards,\nThe Gearrent Team")

	if err := s.mailer.Send(ctx, email, name, subject, b.String()); err != nil {
		return fmt.Errorf("failed to send transaction notification: %w", err)
	}
	return nil
}

func (s *emailService) SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice, daysLate int, lateFee int64) error {
	subject := fmt.Sprintf("Overdue return: %s", notice.Code)

	body := fmt.Sprintf("Hello %s,\n\nThe equipment for transaction %s was due back on %s and is now %d day(s) late.\n"+
		"Late fees so far: %s (%s per day).\n\nPlease return it as soon as possible.\n\nBest regards,\nThe Gearrent Team",
		notice.UserName, notice.Code, notice.EndDate.Format(pricing.DateLayout), daysLate,
		s.rupiah(lateFee), s.rupiah(notice.LateFeePerDay))

	if err := s.mailer.Send(ctx, notice.Email, notice.UserName, subject, body); err != nil {
		return fmt.Errorf("failed to send overdue reminder: %w", err)
	}
	return nil
}
