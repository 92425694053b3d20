// Package dashboard implements the analytics subcommand.
package dashboard

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the dashboard command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show library dashboard aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			analytics, err := c.Analytics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Books: %d  Members: %d  Checkouts: %d  Overdue: %d\n\n",
				analytics.TotalBooks, analytics.TotalMembers,
				analytics.TotalCheckouts, analytics.OverdueBooks)

			if len(analytics.PopularBooks) > 0 {
				fmt.Fprintln(out, "Most borrowed:")
				w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "TITLE\tAUTHOR\tBORROWS")
				for i := range analytics.PopularBooks {
					p := &analytics.PopularBooks[i]
					fmt.Fprintf(w, "%s\t%s\t%d\n", p.Book.Title, p.Book.Author, p.BorrowCount)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}

			if len(analytics.RecentActivities) > 0 {
				fmt.Fprintln(out, "Recent activity:")
				w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "WHEN\tTYPE\tBOOK\tMEMBER")
				for i := range analytics.RecentActivities {
					a := &analytics.RecentActivities[i]
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.CreatedAt, a.Type, a.Book.Title, a.User.Name)
				}
				return w.Flush()
			}
			return nil
		},
	}
}
