package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/sithub-client/internal/sithub"
	"github.com/username/sithub-client/internal/weekview"
	"github.com/username/sithub-client/pkg/dateutil"
)

func areasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List areas",
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

			areas, err := client.Areas(cmd.Context())
			if err != nil {
				return err
			}
			for _, area := range areas {
				a.out.Printf("%-12s %s %s\n", area.ID, area.Attributes.Name, a.out.Muted(area.Attributes.Description))
			}
			return nil
		},
	}
}

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups <area-id>",
		Short: "List the item groups (rooms) of an area",
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

			groups, err := client.ItemGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, group := range groups {
				a.out.Printf("%-12s %s %s\n", group.ID, group.Attributes.Name, a.out.Muted(group.Attributes.Description))
			}
			return nil
		},
	}
}

func itemsCmd() *cobra.Command {
	var week string
	var date string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "items <item-group-id>",
		Short: "Show the desks of an item group for every day of the selected week",
		Args:  cobra.ExactArgs(1),
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

			if date != "" {
				if _, err := dateutil.ParseDate(date, nil); err != nil {
					return err
				}
				items, err := client.Items(ctx, args[0], date)
				if err != nil {
					return err
				}
				printDay(a, weekview.Day{Date: date, Items: items})
				return nil
			}

			a.selectWeek(week)
			loader := weekview.NewLoader(a.selector, weekview.ItemGroupFetcher(client, args[0]), logger,
				weekview.WithMaxConcurrency(concurrency))
			if err := loader.Load(ctx, a.selector.SelectionKey()); err != nil {
				return err
			}

			snap := loader.Snapshot()
			a.out.Println(a.out.Header(fmt.Sprintf("%s, item group %s", snap.Key.Week, args[0])))
			for _, day := range snap.Days {
				printDay(a, day)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Week to show (YYYY-Www), default current week")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Show a single date (YYYY-MM-DD) instead of a week")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Days fetched in parallel")
	return cmd
}

func printDay(a *app, day weekview.Day) {
	heading := day.Date
	if t, err := dateutil.ParseDate(day.Date, nil); err == nil {
		heading = fmt.Sprintf("%s %s", t.Weekday().String()[:3], a.formatter.FormatDate(t))
	}
	a.out.Println(a.out.Header(heading))

	if day.Err != nil {
		a.out.Printf("  %s %v\n", a.out.Fail("error:"), day.Err)
		return
	}
	if len(day.Items) == 0 {
		a.out.Println(a.out.Muted("  no items"))
		return
	}

	for _, item := range day.Items {
		state := a.out.OK(item.Attributes.Availability)
		if item.Attributes.Availability == sithub.AvailabilityOccupied {
			state = a.out.Fail(item.Attributes.Availability)
			if item.Attributes.BookerName != "" {
				state += a.out.Muted(" by " + item.Attributes.BookerName)
			}
		}
		equipment := ""
		if len(item.Attributes.Equipment) > 0 {
			equipment = a.out.Muted(" [" + strings.Join(item.Attributes.Equipment, ", ") + "]")
		}
		a.out.Printf("  %-12s %-20s %s%s\n", item.ID, item.Attributes.Name, state, equipment)
		if item.Attributes.Warning != "" {
			a.out.Printf("  %s %s\n", a.out.Warn("!"), item.Attributes.Warning)
		}
	}
}

func availabilityCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "availability <area-id>",
		Short: "Show free desks per item group and day for the selected week",
		Args:  cobra.ExactArgs(1),
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

			a.selectWeek(week)
			key := a.selector.SelectionKey()
			monday := a.selector.SelectedMonday()

			groups, err := client.WeeklyAvailability(ctx, args[0], dateutil.ISOWeekString(monday), key.ShowWeekends)
			if err != nil {
				return err
			}
			printAvailability(a, groups)
			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Week to show (YYYY-Www), default current week")
	return cmd
}

func printAvailability(a *app, groups []sithub.Resource[sithub.ItemGroupAvailability]) {
	dates := a.selector.SelectedWeekDates()

	header := fmt.Sprintf("%-24s", "")
	for i := range dates {
		header += fmt.Sprintf(" %-6s", dateutil.WeekdayLabel(i, true))
	}
	a.out.Println(a.out.Header(header))

	for _, group := range groups {
		byDate := make(map[string]sithub.DayAvailability, len(group.Attributes.Days))
		for _, day := range group.Attributes.Days {
			byDate[day.Date] = day
		}

		line := fmt.Sprintf("%-24s", group.Attributes.ItemGroupName)
		for _, date := range dates {
			day, ok := byDate[date]
			if !ok {
				line += fmt.Sprintf(" %-6s", "-")
				continue
			}
			cell := a.out.Availability(day.Available, day.Total)
			pad := 6 - len(fmt.Sprintf("%d/%d", day.Available, day.Total))
			if pad < 0 {
				pad = 0
			}
			line += " " + cell + strings.Repeat(" ", pad)
		}
		a.out.Println(line)
	}
}
