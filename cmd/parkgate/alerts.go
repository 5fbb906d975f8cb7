package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
)

// newAlertsCmd is the operator tool over the alert log: list what is
// unresolved, resolve by id.
func newAlertsCmd() *cobra.Command {
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and resolve unauthorized-exit alerts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List unresolved alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger("alerts")

			st, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			mgr := service.NewAlertManager(st.alerts, logger)
			recs, err := mgr.ListActive(cmd.Context())
			if err != nil {
				return err
			}

			if len(recs) == 0 {
				cmd.Println("no unresolved alerts")
				return nil
			}
			for _, a := range recs {
				cmd.Printf("%-5d %-8s %-16s due=%-8d %s ref=%s\n",
					a.ID, a.Plate, a.AlertType, a.DuePayment,
					a.AlertTime.Format("2006-01-02 15:04:05"), a.Reference)
			}
			return nil
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark an alert resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("alert id must be an integer: %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger("alerts")

			st, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			mgr := service.NewAlertManager(st.alerts, logger)
			if err := mgr.Resolve(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("alert %d resolved\n", id)
			return nil
		},
	}

	alertsCmd.AddCommand(listCmd, resolveCmd)
	return alertsCmd
}
