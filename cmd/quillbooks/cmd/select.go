package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/quillbooks/backend/internal/state"
)

var watchFlag bool

var selectCmd = &cobra.Command{
	Use:   "select <company-id>",
	Short: "Select a company and print its data document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.logger.Sync() //nolint:errcheck

		if err := app.manager.SelectCompany(cmd.Context(), args[0]); err != nil {
			return err
		}

		printData(app.store.Snapshot())
		if !watchFlag {
			app.manager.SignOut()
			return nil
		}

		ch, cancel := app.store.Watch()
		defer cancel()
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return nil
				}
				printData(snap)
			case <-interrupt:
				app.manager.SignOut()
				return nil
			}
		}
	},
}

func printData(snap state.Snapshot) {
	if snap.Selected == nil {
		fmt.Println("no company selected")
		return
	}
	fmt.Printf("company %s (%s): %d transactions, %d accounts, %d rules, %d invoices\n",
		snap.Selected.Name, snap.Selected.CompanyID,
		len(snap.Data.Transactions), len(snap.Data.Accounts),
		len(snap.Data.CategoryRules), len(snap.Data.Invoices))
	if snap.LastErr != nil {
		fmt.Printf("last error: %v\n", snap.LastErr)
	}
}

func init() {
	selectCmd.Flags().BoolVar(&watchFlag, "watch", false, "keep streaming data updates until interrupted")
}
