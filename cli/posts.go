package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"netsoc/blog"
	"netsoc/database"
)

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func prettyPostAuthors(post database.BlogPost) string {
	names := make([]string, len(post.Authors))
	for i, a := range post.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func prettyTime(t time.Time) string {
	return t.Local().Format("02/01/2006 at 15:04:05 MST")
}

func (a *App) postsCommand() *cli.Command {
	return &cli.Command{
		Name:  "posts",
		Usage: "Manage blog posts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List posts by last-edited time",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of posts (0 for all)"},
					&cli.BoolFlag{Name: "reverse", Aliases: []string{"r"}, Usage: "Oldest first"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.listPosts(int(cmd.Int("limit")), cmd.Bool("reverse"))
				},
			},
			{
				Name:      "get",
				Usage:     "Print one post",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "html", Usage: "Print the HTML body"},
					&cli.BoolFlag{Name: "force-markdown", Usage: "Convert the HTML body when no Markdown is stored"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					return a.getPost(id, cmd.Bool("html"), cmd.Bool("force-markdown"))
				},
			},
			{
				Name:  "new",
				Usage: "Write a new post in your editor",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringSliceFlag{Name: "author", Aliases: []string{"a"}, Usage: "Author name (repeatable)", Required: true},
					&cli.BoolFlag{Name: "html", Usage: "Write raw HTML instead of Markdown"},
					&cli.StringFlag{Name: "editor", Value: defaultEditor(), Usage: "Editor to invoke"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return a.newPost(cmd.String("title"), cmd.StringSlice("author"), cmd.Bool("html"), cmd.String("editor"))
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a post's body in your editor",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Replace the title"},
					&cli.StringSliceFlag{Name: "author", Aliases: []string{"a"}, Usage: "Replace the author set (repeatable)"},
					&cli.BoolFlag{Name: "html", Usage: "Edit the HTML body"},
					&cli.StringFlag{Name: "editor", Value: defaultEditor(), Usage: "Editor to invoke"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					return a.editPost(id, cmd.String("title"), cmd.StringSlice("author"), cmd.Bool("html"), cmd.String("editor"))
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a post",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd.Args().First())
					if err != nil {
						return err
					}
					if err := a.Blog.Delete(id); err != nil {
						return err
					}
					a.printf("Post #%d deleted", id)
					return nil
				},
			},
		},
	}
}

func (a *App) listPosts(limit int, reverse bool) error {
	posts, err := a.Blog.List(limit, reverse)
	if err != nil {
		return err
	}
	for _, post := range posts {
		a.printf("#%d: %q by %s (last modified on %s)", post.ID, post.Title, prettyPostAuthors(post), prettyTime(post.Edited))
	}
	return nil
}

// postBody picks the body to emit and any warnings that go with it.
func postBody(post *database.BlogPost, wantHTML, forceMarkdown bool) (string, []string, error) {
	switch {
	case wantHTML:
		return post.HTML, nil, nil
	case post.Markdown != nil:
		return *post.Markdown, nil, nil
	case forceMarkdown:
		converted, err := blog.HTMLToMarkdown(post.HTML)
		if err != nil {
			return "", nil, err
		}
		return converted, []string{"Converting HTML to Markdown..."}, nil
	default:
		return post.HTML, []string{"Warning: Markdown unavailable, showing HTML"}, nil
	}
}

func (a *App) getPost(id uint, wantHTML, forceMarkdown bool) error {
	post, err := a.Blog.Get(id)
	if err != nil {
		return err
	}

	a.eprintf("Title: %s", post.Title)
	a.eprintf("Author(s): %s", prettyPostAuthors(*post))
	a.eprintf("Created: on %s", prettyTime(post.Time))
	if !post.Edited.Equal(post.Time) {
		a.eprintf("Last edited: on %s", prettyTime(post.Edited))
	}

	body, warnings, err := postBody(post, wantHTML, forceMarkdown)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		a.eprintf("%s", warning)
	}
	a.printf("%s", body)
	return nil
}

func (a *App) newPost(title string, authors []string, asHTML bool, editor string) error {
	suffix := ".md"
	if asHTML {
		suffix = ".html"
	}

	content, err := a.editText(editor, "", suffix)
	if err == ErrCancelled {
		a.printf("Post cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	input := blog.NewPost{Title: title, Authors: authors}
	if asHTML {
		input.HTML = content
	} else {
		input.Markdown = content
	}

	post, err := a.Blog.Create(input)
	if err != nil {
		return err
	}
	a.printf("Created post #%d", post.ID)
	return nil
}

func (a *App) editPost(id uint, title string, authors []string, asHTML bool, editor string) error {
	post, err := a.Blog.Get(id)
	if err != nil {
		return err
	}

	// Edit whichever body the post actually has; a post without Markdown is
	// edited as HTML even without --html.
	editingHTML := asHTML || post.Markdown == nil
	seed, suffix := post.HTML, ".html"
	if !editingHTML {
		seed, suffix = *post.Markdown, ".md"
	}

	content, err := a.editText(editor, seed, suffix)
	if err == ErrCancelled {
		a.printf("Edit cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	up := blog.PostUpdate{}
	if title != "" {
		up.Title = &title
	}
	if len(authors) > 0 {
		up.Authors = authors
	}
	if editingHTML {
		up.HTML = &content
	} else {
		up.Markdown = &content
	}

	if _, err := a.Blog.Update(id, up); err != nil {
		return err
	}
	a.printf("Updated post #%d", id)
	return nil
}
