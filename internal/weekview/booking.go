package weekview

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/username/sithub-client/internal/sithub"
)

// Booker is the part of the SitHub client BookWeek needs
type Booker interface {
	CreateBooking(ctx context.Context, req sithub.BookingRequest) (*sithub.Resource[sithub.Booking], error)
}

// BookingResult is the outcome of booking one date
type BookingResult struct {
	Date      string
	BookingID string
	Err       error
}

// BookWeek books itemID on every date in order. A failed date does not stop
// the remaining ones; only a cancelled ctx does, marking the rest with the
// context error.
func BookWeek(ctx context.Context, booker Booker, itemID, note string, dates []string, logger *zap.Logger) []BookingResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]BookingResult, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			results = append(results, BookingResult{Date: date, Err: err})
			continue
		}

		booking, err := booker.CreateBooking(ctx, sithub.BookingRequest{
			ItemID: itemID,
			Date:   date,
			Note:   note,
		})
		if err != nil {
			logger.Warn("Failed to book date",
				zap.String("item_id", itemID),
				zap.String("date", date),
				zap.Error(err))
			results = append(results, BookingResult{Date: date, Err: err})
			continue
		}
		results = append(results, BookingResult{Date: date, BookingID: booking.ID})
	}

	logger.Info("Week booking finished",
		zap.String("item_id", itemID),
		zap.Int("dates", len(dates)),
		zap.Int("failed", FailedCount(results)))

	return results
}

// FailedCount returns how many results carry an error
func FailedCount(results []BookingResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// IsAlreadyBooked reports whether a booking failed because the item is taken
func IsAlreadyBooked(err error) bool {
	var apiErr *sithub.APIError
	return errors.As(err, &apiErr) && apiErr.IsConflict()
}
