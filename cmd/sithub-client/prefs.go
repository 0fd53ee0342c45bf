package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/username/sithub-client/internal/preferences"
)

// preference names accepted on the command line
const (
	prefShowWeekends = "show_weekends"
	prefBookingMode  = "booking_mode"
	prefTheme        = "theme"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
	}
	cmd.AddCommand(prefsGetCmd(), prefsSetCmd())
	return cmd
}

func prefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [name]",
		Short: "Print preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			values := map[string]string{
				prefShowWeekends: strconv.FormatBool(a.weekends.ShowWeekends()),
				prefBookingMode:  string(a.mode.Mode()),
				prefTheme:        string(a.theme.Theme()),
			}

			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return fmt.Errorf("unknown preference %q", args[0])
				}
				a.out.Println(v)
				return nil
			}

			for _, name := range []string{prefShowWeekends, prefBookingMode, prefTheme} {
				a.out.Printf("%-14s %s\n", name, values[name])
			}
			if !a.storage.Available() {
				a.out.Println(a.out.Warn("preference storage unavailable, showing defaults"))
			}
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change a preference (show_weekends, booking_mode, theme)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			name, value := args[0], args[1]
			switch name {
			case prefShowWeekends:
				show, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("show_weekends must be true or false, got %q", value)
				}
				a.weekends.SetShowWeekends(show)
				a.selector.NotifyWeekendsChanged()
			case prefBookingMode:
				mode, err := preferences.ParseBookingMode(value)
				if err != nil {
					return err
				}
				if err := a.mode.SetMode(mode); err != nil {
					return err
				}
			case prefTheme:
				theme, err := preferences.ParseTheme(value)
				if err != nil {
					return err
				}
				if err := a.theme.SetTheme(theme); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown preference %q", name)
			}

			a.out.Printf("%s = %s\n", name, a.out.OK(value))
			return nil
		},
	}
}
