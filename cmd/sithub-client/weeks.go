package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/sithub-client/pkg/dateutil"
)

func weeksCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List the selectable weeks, starting with the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.selectWeek(week)
			printWeeks(a)

			selected := a.selector.SelectedWeek()
			if !a.selector.HasOption(selected) {
				a.out.Printf("%s %s is not in the list above\n", a.out.Muted("selected:"), selected)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Mark a week as selected (YYYY-Www)")
	return cmd
}

func daysCmd() *cobra.Command {
	var week string
	var short bool

	cmd := &cobra.Command{
		Use:   "days",
		Short: "List the days of the selected week",
		Long:  "List Monday to Friday of the selected week, or Monday to Sunday when the show_weekends preference is on",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.selectWeek(week)
			monday := a.selector.SelectedMonday()

			a.out.Println(a.out.Header(fmt.Sprintf("%s (Week %d)",
				dateutil.ISOWeekString(monday), dateutil.ISOWeekNumber(monday))))

			for i, date := range a.selector.SelectedWeekDates() {
				label := dateutil.WeekdayLabel(i, short)
				day := monday.AddDate(0, 0, i)
				line := fmt.Sprintf("  %-10s %s  %s", label, date, a.formatter.FormatDate(day))
				if dateutil.IsWeekend(day) {
					line = a.out.Muted(line)
				}
				a.out.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Week to show (YYYY-Www), default current week")
	cmd.Flags().BoolVar(&short, "short", false, "Use short weekday labels")
	return cmd
}
