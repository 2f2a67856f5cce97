package cli

import (
	"fmt"

	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newBooksCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and curate the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(app),
		newBooksGetCmd(app),
		newBooksAddCmd(app),
		newBooksUpdateCmd(app),
		newBooksDeleteCmd(app),
	)
	return cmd
}

func newBooksListCmd(app func() *App) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleAny); err != nil {
				return err
			}
			books, err := a.client.ListBooks(cmd.Context(), query)
			if err != nil {
				return a.explain(err)
			}
			if len(books) == 0 {
				a.info("No books found.")
				return nil
			}
			return a.renderBooks(books)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by title, author or genre")
	return cmd
}

func newBooksGetCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleAny); err != nil {
				return err
			}
			book, err := a.client.GetBook(cmd.Context(), args[0])
			if err != nil {
				return a.explain(err)
			}
			return a.renderBooks([]models.Book{book})
		},
	}
}

func bookFlags(cmd *cobra.Command, book *models.Book) {
	cmd.Flags().StringVar(&book.Title, "title", "", "Title")
	cmd.Flags().StringVar(&book.Author, "author", "", "Author")
	cmd.Flags().StringVar(&book.Genre, "genre", "", "Genre")
	cmd.Flags().StringVar(&book.PublishedDate, "published", "", "Publication date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&book.CoverImage, "cover", "", "Cover image URL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
}

func newBooksAddCmd(app func() *App) *cobra.Command {
	var book models.Book
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (BookRecommender)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleRecommender); err != nil {
				return err
			}
			created, err := a.client.CreateBook(cmd.Context(), book)
			if err != nil {
				return a.explain(err)
			}
			a.success("Added '%s' (%s).", created.Title, created.ID)
			return nil
		},
	}
	bookFlags(cmd, &book)
	return cmd
}

func newBooksUpdateCmd(app func() *App) *cobra.Command {
	var book models.Book
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a book's fields (BookRecommender)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleRecommender); err != nil {
				return err
			}
			updated, err := a.client.UpdateBook(cmd.Context(), args[0], book)
			if err != nil {
				return a.explain(err)
			}
			a.success("Updated '%s'.", updated.Title)
			return nil
		},
	}
	bookFlags(cmd, &book)
	return cmd
}

func newBooksDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book (BookRecommender)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleRecommender); err != nil {
				return err
			}
			if err := a.client.DeleteBook(cmd.Context(), args[0]); err != nil {
				return a.explain(err)
			}
			a.success("Deleted %s.", args[0])
			return nil
		},
	}
}

func (a *App) renderBooks(books []models.Book) error {
	data := pterm.TableData{{"ID", "TITLE", "AUTHOR", "GENRE", "PUBLISHED"}}
	for _, b := range books {
		data = append(data, []string{b.ID, b.Title, b.Author, b.Genre, b.PublishedDate})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	pterm.Fprintln(a.out, out)
	return nil
}
