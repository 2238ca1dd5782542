package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"netsoc/database"
	"netsoc/library"
)

func (a *App) booksCommand() *cli.Command {
	return &cli.Command{
		Name:  "books",
		Usage: "Manage the library catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List books by catalog id",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of books (0 for all)"},
					&cli.BoolFlag{Name: "reverse", Aliases: []string{"r"}, Usage: "Oldest first"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.listBooks(int(cmd.Int("limit")), cmd.Bool("reverse"))
				},
			},
			{
				Name:      "get",
				Usage:     "Print one book by id, ISBN or ISBN-13",
				ArgsUsage: "<id|isbn|isbn13>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.getBook(cmd.Args().First())
				},
			},
			{
				Name:  "new",
				Usage: "Add books to the catalog",
				Commands: []*cli.Command{
					{
						Name:      "single",
						Usage:     "Add one book by ISBN",
						ArgsUsage: "<isbn>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "literature", Usage: "File under literature instead of education"},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return a.addBooks(ctx, []string{cmd.Args().First()}, cmd.Bool("literature"))
						},
					},
					{
						Name:  "list",
						Usage: "Add books from a list of ISBNs on standard input, one per line",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "literature", Usage: "File under literature instead of education"},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							var isbns []string
							scanner := bufio.NewScanner(a.Stdin)
							for scanner.Scan() {
								if line := strings.TrimSpace(scanner.Text()); line != "" {
									isbns = append(isbns, line)
								}
							}
							if err := scanner.Err(); err != nil {
								return err
							}
							return a.addBooks(ctx, isbns, cmd.Bool("literature"))
						},
					},
					{
						Name:  "manual",
						Usage: "Add a book by filling in its fields in your editor",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "editor", Value: defaultEditor(), Usage: "Editor to invoke"},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return a.manualAddBook(cmd.String("editor"))
						},
					},
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a book's fields in your editor",
				ArgsUsage: "<id|isbn|isbn13>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "authors", Usage: "Also edit (and replace) the author set"},
					&cli.StringFlag{Name: "editor", Value: defaultEditor(), Usage: "Editor to invoke"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.editBookCommand(cmd.Args().First(), cmd.Bool("authors"), cmd.String("editor"))
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a book",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					if err := a.Library.Delete(id); err != nil {
						return err
					}
					a.eprintf("Book #%d deleted", id)
					return nil
				},
			},
		},
	}
}

func (a *App) listBooks(limit int, reverse bool) error {
	books, err := a.Library.List(limit, reverse)
	if err != nil {
		return err
	}
	for _, book := range books {
		a.printf("#%d: %q", book.ID, book.Title)
	}
	return nil
}

func prettyBookAuthors(book *database.Book) string {
	names := make([]string, len(book.Authors))
	for i, author := range book.Authors {
		names[i] = author.Name
	}
	return strings.Join(names, ", ")
}

func (a *App) getBook(key string) error {
	book, err := a.Library.Get(key)
	if err != nil {
		return err
	}

	isbn := ""
	if book.ISBN != nil {
		isbn = *book.ISBN
	}
	a.printf("   #%-3d %q\n\tby %s\n\t%s :: %s//%s\n\t%s\n\t%s\n\ttype: %s\n\tHas description: %t",
		book.ID, book.Title, prettyBookAuthors(book),
		book.CallNumber, book.ISBN13, isbn,
		book.ImageURL, book.Publisher, book.Type,
		book.Description != "")
	return nil
}

type itemStatus struct {
	isbn   string
	status string
}

// addBooks processes each ISBN independently; one failure never aborts the
// rest of the batch. Duplicates are reported immediately, everything else is
// collected and printed at the end sorted by status.
func (a *App) addBooks(ctx context.Context, isbns []string, literature bool) error {
	bookType := database.BookTypeEducation
	if literature {
		bookType = database.BookTypeLiterature
	}

	var statuses []itemStatus
	for _, isbn := range isbns {
		book, notes, err := a.Library.CreateFromISBN(ctx, isbn, bookType)
		switch {
		case errors.Is(err, library.ErrAlreadyExists):
			a.eprintf("%s\t> ISBN already in db", isbn)
		case err != nil:
			statuses = append(statuses, itemStatus{isbn, fmt.Sprintf("> FAILURE: %v", err)})
		default:
			status := fmt.Sprintf("> ADDED as #%02d", book.ID)
			for _, note := range notes {
				status = fmt.Sprintf("> ATTENTION: %s %s", note, status)
			}
			statuses = append(statuses, itemStatus{isbn, status})
		}
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].status < statuses[j].status })
	for _, s := range statuses {
		a.eprintf("%s\t%s", s.isbn, s.status)
	}
	return nil
}

func (a *App) manualAddBook(editor string) error {
	// Seed the editor with the full editable schema so every field shows up.
	skeleton := library.EditableBook{
		Type:    string(database.BookTypeEducation),
		Authors: []library.AuthorInput{{Name: ""}},
	}

	edited, err := a.editBook(editor, skeleton)
	if err == ErrCancelled {
		a.printf("Add cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	book, err := a.Library.CreateManual(edited)
	if err != nil {
		return err
	}
	a.printf("> ADDED as #%d", book.ID)
	return nil
}

func (a *App) editBookCommand(key string, withAuthors bool, editor string) error {
	book, err := a.Library.Get(key)
	if err != nil {
		return err
	}

	edited, err := a.editBook(editor, library.Editable(book, withAuthors))
	if err == ErrCancelled {
		a.printf("Edit cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := a.Library.Edit(book.ID, edited, withAuthors); err != nil {
		return err
	}
	a.eprintf("> Updated #%d", book.ID)
	return nil
}
