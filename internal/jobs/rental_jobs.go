package jobs

import (
	"context"
	"time"

	"librental-backend/internal/logger"
)

// MarkOverdueRentals stamps OVERDUE on open rentals past their due date.
// Overdue-ness is always derived at query time; the stamp is an audit
// trail, so skipping a run never changes what callers see.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()

		count, err := jr.store.RentalRepository.MarkOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}
		logger.Info("Marked rentals as overdue", "count", count)
	})
}

// SendOverdueReminders emails every holder of an overdue book.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		rentals, err := jr.store.RentalRepository.ListOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		sent := 0
		for _, rental := range rentals {
			err := jr.services.Email.SendOverdueReminder(ctx, rental.UserEmail, rental.UserName, rental.BookTitle, rental.DueOn)
			if err != nil {
				logger.Warn("Failed to send overdue reminder",
					"rental_id", rental.ID, "user_id", rental.UserID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent overdue reminders", "sent", sent, "overdue", len(rentals))
	})
}

// SendDueSoonReminders emails holders whose rentals come due within the
// configured reminder window.
func (jr *JobRunner) SendDueSoonReminders() {
	jr.runWithRecovery("SendDueSoonReminders", func() {
		ctx := context.Background()

		rentals, err := jr.store.RentalRepository.ListDueWithin(ctx, time.Now(), jr.config.Rental.DueSoonDays)
		if err != nil {
			logger.Error("Failed to list due-soon rentals", "error", err)
			return
		}

		sent := 0
		for _, rental := range rentals {
			err := jr.services.Email.SendDueSoonReminder(ctx, rental.UserEmail, rental.UserName, rental.BookTitle, rental.DueOn)
			if err != nil {
				logger.Warn("Failed to send due-soon reminder",
					"rental_id", rental.ID, "user_id", rental.UserID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent due-soon reminders", "sent", sent, "due_soon", len(rentals))
	})
}
