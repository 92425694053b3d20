// Package members implements the member subcommands.
package members

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the members command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage library members",
	}
	cmd.AddCommand(
		listCommand(settings),
		showCommand(settings),
		addCommand(settings),
		updateCommand(settings),
		deleteCommand(settings),
	)
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			members, err := c.Members(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tROLE\tCHECKOUTS")
			for i := range members {
				m := &members[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
					m.ID, m.Name, m.Email, m.Phone, m.Role, len(m.Checkouts))
			}
			return w.Flush()
		},
	}
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a member and their checkouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.Member(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Member %d: %s <%s> (%s)\n", m.ID, m.Name, m.Email, m.Role)
			if len(m.Checkouts) == 0 {
				fmt.Fprintln(out, "No checkouts")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "CHECKOUT\tBOOK\tRENEWALS\tSTATUS\tRETURN BY")
			for i := range m.Checkouts {
				co := &m.Checkouts[i]
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					co.ID, co.Book.Title, co.RenewalNumber, console.CheckoutStatus(co), co.ReturnDate)
			}
			return w.Flush()
		},
	}
}

func memberInputFlags(cmd *cobra.Command, input *api.MemberInput) {
	cmd.Flags().StringVar(&input.Name, "name", "", "Member name")
	cmd.Flags().StringVar(&input.Email, "email", "", "Member email")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "Member phone number")
	cmd.Flags().StringVar((*string)(&input.Role), "role", string(api.RoleUser), "Role: admin, librarian or user")
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var input api.MemberInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.AddMember(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added member %d: %s\n", m.ID, m.Name)
			return nil
		},
	}

	memberInputFlags(cmd, &input)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func updateCommand(settings *conf.Settings) *cobra.Command {
	var input api.MemberInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.UpdateMember(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated member %d: %s\n", m.ID, m.Name)
			return nil
		},
	}

	memberInputFlags(cmd, &input)
	return cmd
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.DeleteMember(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted member %d\n", id)
			return nil
		},
	}
}
