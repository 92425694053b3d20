// Package checkouts implements the checkout subcommands.
package checkouts

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the checkouts command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkouts",
		Short: "Manage book checkouts",
	}
	cmd.AddCommand(
		listCommand(settings),
		addCommand(settings),
		renewCommand(settings),
		returnCommand(settings),
	)
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			page, err := c.Checkouts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMEMBER\tBOOK\tRENEWALS\tSTATUS\tRETURN BY")
			for i := range page.Data {
				co := &page.Data[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
					co.ID, co.User.Name, co.Book.Title, co.RenewalNumber,
					console.CheckoutStatus(co), co.ReturnDate)
			}
			return w.Flush()
		},
	}
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var input api.CheckoutInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Check a book out to a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			co, err := c.AddCheckout(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checkout %d created for book %d\n", co.ID, co.BookID)
			return nil
		},
	}

	cmd.Flags().IntVar(&input.UserID, "member-id", 0, "Member id")
	cmd.Flags().IntVar(&input.BookID, "book-id", 0, "Book id")
	cmd.Flags().StringVar(&input.ReturnDate, "return-date", "", "Return date, e.g. 2026-09-30")
	_ = cmd.MarkFlagRequired("member-id")
	_ = cmd.MarkFlagRequired("book-id")
	_ = cmd.MarkFlagRequired("return-date")
	return cmd
}

func renewCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "renew <id>",
		Short: "Renew a checkout",
		Long:  "Renews a checkout. A checkout that has exhausted its renewals is terminal and rejected without contacting the backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid checkout id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			page, err := c.Checkouts(cmd.Context())
			if err != nil {
				return err
			}
			var checkout *api.Checkout
			for i := range page.Data {
				if page.Data[i].ID == id {
					checkout = &page.Data[i]
					break
				}
			}
			if checkout == nil {
				return fmt.Errorf("checkout %d not found", id)
			}

			if err := c.RenewCheckout(cmd.Context(), *checkout); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renewed checkout %d\n", id)
			return nil
		},
	}
}

func returnCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "return <id>",
		Short: "Return a checked out book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid checkout id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.ReturnCheckout(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Returned checkout %d\n", id)
			return nil
		},
	}
}
