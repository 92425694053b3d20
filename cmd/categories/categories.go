// Package categories implements the category subcommands.
package categories

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the categories command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage book categories",
	}
	cmd.AddCommand(
		listCommand(settings),
		addCommand(settings),
		updateCommand(settings),
		deleteCommand(settings),
	)
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with their book counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			categories, err := c.Categories(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBOOKS\tDESCRIPTION")
			for i := range categories {
				cat := &categories[i]
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", cat.ID, cat.Name, cat.BookCount, cat.Description)
			}
			return w.Flush()
		},
	}
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var input api.CategoryInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			category, err := c.AddCategory(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %d: %s\n", category.ID, category.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Category name")
	cmd.Flags().StringVar(&input.Description, "description", "", "Category description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func updateCommand(settings *conf.Settings) *cobra.Command {
	var input api.CategoryInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			category, err := c.UpdateCategory(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %d: %s\n", category.ID, category.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Category name")
	cmd.Flags().StringVar(&input.Description, "description", "", "Category description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  "Deletes a category. The backend refuses categories that still contain books.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
			return nil
		},
	}
}
