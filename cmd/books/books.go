// Package books implements the book catalog subcommands.
package books

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the books command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage the book catalog",
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
	var filter api.BookFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			page, err := c.Books(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tSTATUS\tLOCATION")
			for i := range page.Data {
				b := &page.Data[i]
				status := "Available"
				if !b.IsAvailable {
					status = "Checked out"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, b.Title, b.Author, b.Category.Name, status, b.Location)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d books)\n",
				page.CurrentPage, page.LastPage, page.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().StringVar(&filter.Title, "title", "", "Filter by title substring")
	cmd.Flags().StringVar(&filter.Category, "category", "all", "Filter by category id")
	cmd.Flags().StringVar(&filter.Status, "status", "all", "Filter by status: available or unavailable")
	return cmd
}

// readCover loads a cover image from disk and infers its content type.
func readCover(path string) (*console.CoverImage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cover image: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &console.CoverImage{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func bookInputFlags(cmd *cobra.Command, input *api.BookInput, coverPath *string) {
	cmd.Flags().StringVar(&input.Title, "title", "", "Book title")
	cmd.Flags().StringVar(&input.Author, "author", "", "Book author")
	cmd.Flags().IntVar(&input.CategoryID, "category-id", 0, "Category id")
	cmd.Flags().StringVar(&input.Location, "location", "", "Shelf location, e.g. B-12")
	cmd.Flags().IntVar(&input.Pages, "pages", 0, "Page count")
	cmd.Flags().StringVar(&input.Description, "description", "", "Description")
	cmd.Flags().StringVar(&input.Publisher, "publisher", "", "Publisher")
	cmd.Flags().IntVar(&input.PublishedYear, "year", 0, "Published year")
	cmd.Flags().StringVar(&input.Notes, "notes", "", "Notes")
	cmd.Flags().StringVar((*string)(&input.Condition), "condition", string(api.ConditionGood), "Condition: excellent, good or bad")
	cmd.Flags().StringVar(coverPath, "cover", "", "Path to a cover image file")
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var input api.BookInput
	var coverPath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cover, err := readCover(coverPath)
			if err != nil {
				return err
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			book, err := c.AddBook(cmd.Context(), input, cover)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added book %d: %s\n", book.ID, book.Title)
			return nil
		},
	}

	bookInputFlags(cmd, &input, &coverPath)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("category-id")
	return cmd
}

func updateCommand(settings *conf.Settings) *cobra.Command {
	var input api.BookInput
	var coverPath string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an existing book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			cover, err := readCover(coverPath)
			if err != nil {
				return err
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			book, err := c.Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			updated, err := c.UpdateBook(cmd.Context(), *book, input, cover)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated book %d: %s\n", updated.ID, updated.Title)
			return nil
		},
	}

	bookInputFlags(cmd, &input, &coverPath)
	return cmd
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book and its stored cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			book, err := c.Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := c.DeleteBook(cmd.Context(), *book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d: %s\n", book.ID, book.Title)
			return nil
		},
	}
	return cmd
}
