package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List and create companies",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies owned by the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.logger.Sync() //nolint:errcheck

		if err := app.manager.ListCompanies(cmd.Context(), app.userID); err != nil {
			return err
		}

		// The first watch notification arrives through the store.
		ch, cancel := app.store.Watch()
		defer cancel()
		snap := <-ch

		if len(snap.Companies) == 0 {
			fmt.Println("no companies")
			return nil
		}
		for _, c := range snap.Companies {
			fmt.Printf("%-32s  %-24s  last accessed %s\n",
				c.CompanyID, c.Name, c.LastAccessedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var companiesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.logger.Sync() //nolint:errcheck

		id, err := app.manager.AddCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesAddCmd)
}
