package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCompany string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage categorization rules",
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <pattern> <category>",
	Short: "Add a categorization pattern for an account category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.logger.Sync() //nolint:errcheck

		if err := app.manager.SelectCompany(cmd.Context(), rulesCompany); err != nil {
			return err
		}
		defer app.manager.SignOut()

		if err := app.manager.AddCategoryRule(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("pattern %q now assigns category %s\n", args[0], args[1])
		return nil
	},
}

var rulesMatchCmd = &cobra.Command{
	Use:   "match <description>",
	Short: "Show which category a transaction description would get",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.logger.Sync() //nolint:errcheck

		if err := app.manager.SelectCompany(cmd.Context(), rulesCompany); err != nil {
			return err
		}
		defer app.manager.SignOut()

		category, ok := app.manager.LookupCategory(args[0])
		if !ok {
			fmt.Println("no rule matches; transaction stays uncategorized")
			return nil
		}
		fmt.Println(category)
		return nil
	},
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesCompany, "company", "", "company id to operate on (required)")
	_ = rulesCmd.MarkPersistentFlagRequired("company")

	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesMatchCmd)
}
