package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/psds-microservice/dispatch/internal/errs"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage operator accounts",
}

var userRole string

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create an operator (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		caller, err := st.login(ctx)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return errs.ErrForbidden
		}
		u, err := st.users.Create(ctx, args[0], args[1], userRole)
		if err != nil {
			return err
		}
		fmt.Printf("user %s created (id %d, role %s)\n", u.Username, u.ID, u.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		users, err := st.users.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
		}
		return w.Flush()
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", "user", "user | admin")
	userCmd.AddCommand(userAddCmd, userListCmd)
}
