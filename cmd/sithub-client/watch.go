package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/sithub-client/internal/watch"
	"github.com/username/sithub-client/internal/weekview"
)

func watchCmd() *cobra.Command {
	var itemGroupID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep running and reprint the week list when the week rolls over",
		Long: "Keep running and reprint the week list whenever the current ISO week changes. " +
			"With --group the desks of that item group are reloaded for the new current week.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var loader *weekview.Loader
			if itemGroupID != "" {
				client, err := a.newClient(ctx)
				if err != nil {
					return err
				}

				var printMu sync.Mutex
				loader = weekview.NewLoader(a.selector, weekview.ItemGroupFetcher(client, itemGroupID), logger,
					weekview.WithUpdateHandler(func(snap weekview.Snapshot) {
						printMu.Lock()
						defer printMu.Unlock()
						a.out.Println(a.out.Header(fmt.Sprintf("%s, item group %s", snap.Key.Week, itemGroupID)))
						for _, day := range snap.Days {
							printDay(a, day)
						}
					}))
				if err := loader.Attach(ctx); err != nil {
					return err
				}
				defer func() {
					cancel()
					loader.Wait()
				}()
			}

			printWeeks(a)

			w := watch.NewWatcher(a.selector, cfg.Watch.GetInterval(), func(ctx context.Context, previous, current string) error {
				logger.Info("Week rolled over", zap.String("previous", previous), zap.String("current", current))
				a.out.Printf("\n%s %s -> %s\n", a.out.Warn("week changed:"), previous, current)
				// Follow the current week if the old current week was selected
				if a.selector.SelectedWeek() == previous {
					a.selector.SetSelectedWeek(current)
				}
				printWeeks(a)
				return nil
			}, logger)

			return w.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&itemGroupID, "group", "g", "", "Item group to keep loaded for the selected week")
	return cmd
}

func printWeeks(a *app) {
	selected := a.selector.SelectedWeek()
	for _, opt := range a.selector.WeekOptions() {
		if opt.Value == selected {
			a.out.Printf("> %s  %s\n", opt.Value, a.out.Selected(opt.Label))
			continue
		}
		a.out.Printf("  %s  %s\n", opt.Value, opt.Label)
	}
}
