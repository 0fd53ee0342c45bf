package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/sithub-client/internal/preferences"
	"github.com/username/sithub-client/internal/sithub"
	"github.com/username/sithub-client/internal/weekselector"
	"github.com/username/sithub-client/internal/weekview"
	"github.com/username/sithub-client/pkg/dateutil"
)

func bookingsCmd() *cobra.Command {
	var history bool
	var from, to string

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List my upcoming bookings, or past ones with --history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}

			var bookings []sithub.Resource[sithub.MyBooking]
			if history {
				for _, d := range []string{from, to} {
					if d == "" {
						continue
					}
					if _, err := dateutil.ParseDate(d, nil); err != nil {
						return err
					}
				}
				bookings, err = client.BookingHistory(ctx, from, to)
			} else {
				bookings, err = client.MyBookings(ctx)
			}
			if err != nil {
				return err
			}

			if len(bookings) == 0 {
				a.out.Println(a.out.Muted("no bookings"))
				return nil
			}
			for _, b := range bookings {
				attrs := b.Attributes
				location := fmt.Sprintf("%s / %s / %s", attrs.AreaName, attrs.ItemGroupName, attrs.ItemName)
				line := fmt.Sprintf("%-12s %s  %s", b.ID, attrs.BookingDate, location)
				if attrs.BookedByUserName != "" && !attrs.BookedForMe {
					line += a.out.Muted(" (booked by " + attrs.BookedByUserName + ")")
				}
				if attrs.Note != "" {
					line += a.out.Muted("  " + attrs.Note)
				}
				a.out.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Show past bookings")
	cmd.Flags().StringVar(&from, "from", "", "History start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "History end date (YYYY-MM-DD)")
	return cmd
}

func bookCmd() *cobra.Command {
	var note, forUserID, forUserName, week string

	cmd := &cobra.Command{
		Use:   "book <item-id> [date]",
		Short: "Book a desk for a date",
		Long: "Book a desk for one date. Without a date the booking_mode preference decides: " +
			"'day' books today, 'week' books every day of the selected week.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			itemID := args[0]

			var date string
			if len(args) == 2 {
				if _, err := dateutil.ParseDate(args[1], nil); err != nil {
					return err
				}
				date = args[1]
			} else if a.mode.Mode() == preferences.BookingModeWeek {
				if forUserID != "" || forUserName != "" {
					return fmt.Errorf("booking for someone else needs an explicit date")
				}
				return runBookWeek(cmd, a, itemID, week, note)
			} else {
				date = dateutil.FormatDate(weekselector.SystemClock.Now())
			}

			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}

			booking, err := client.CreateBooking(ctx, sithub.BookingRequest{
				ItemID:      itemID,
				Date:        date,
				Note:        note,
				ForUserID:   forUserID,
				ForUserName: forUserName,
			})
			if err != nil {
				if weekview.IsAlreadyBooked(err) {
					a.out.Printf("%s %s is already booked on %s\n", a.out.Fail("✗"), itemID, date)
				}
				return err
			}

			a.out.Printf("%s booked %s on %s (booking %s)\n", a.out.OK("✓"), itemID, date, booking.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Booking note")
	cmd.Flags().StringVar(&forUserID, "for-user-id", "", "Book on behalf of a colleague")
	cmd.Flags().StringVar(&forUserName, "for-user-name", "", "Display name of the colleague")
	cmd.Flags().StringVarP(&week, "week", "w", "", "Week to book in week mode (YYYY-Www)")
	return cmd
}

func bookWeekCmd() *cobra.Command {
	var note, week string

	cmd := &cobra.Command{
		Use:   "book-week <item-id>",
		Short: "Book a desk for every day of the selected week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return runBookWeek(cmd, a, args[0], week, note)
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Booking note")
	cmd.Flags().StringVarP(&week, "week", "w", "", "Week to book (YYYY-Www), default current week")
	return cmd
}

func runBookWeek(cmd *cobra.Command, a *app, itemID, week, note string) error {
	ctx := cmd.Context()
	client, err := a.newClient(ctx)
	if err != nil {
		return err
	}

	a.selectWeek(week)
	dates := a.selector.SelectedWeekDates()

	results := weekview.BookWeek(ctx, client, itemID, note, dates, logger)
	for _, r := range results {
		switch {
		case r.Err == nil:
			a.out.Printf("%s %s booked (booking %s)\n", a.out.OK("✓"), r.Date, r.BookingID)
		case weekview.IsAlreadyBooked(r.Err):
			a.out.Printf("%s %s already booked\n", a.out.Warn("-"), r.Date)
		default:
			a.out.Printf("%s %s %v\n", a.out.Fail("✗"), r.Date, r.Err)
		}
	}

	if failed := weekview.FailedCount(results); failed > 0 {
		return fmt.Errorf("%d of %d dates could not be booked", failed, len(results))
	}
	return nil
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.CancelBooking(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Printf("%s booking %s cancelled\n", a.out.OK("✓"), args[0])
			return nil
		},
	}
}

func noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <booking-id> <note>",
		Short: "Replace the note of a booking",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			booking, err := client.UpdateBookingNote(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			a.out.Printf("%s note of booking %s set to %q\n", a.out.OK("✓"), booking.ID, booking.Attributes.Note)
			return nil
		},
	}
}
