// Package cli implements the administrative command tree. Commands mirror
// the content services one to one; everything is invoked through a single
// binary with subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gorm.io/gorm"

	"netsoc/blog"
	"netsoc/config"
	"netsoc/library"
)

// ErrCancelled means the user aborted an interactive flow; nothing was
// written.
var ErrCancelled = errors.New("cancelled")

// EditorFunc opens an editor on path and returns when the user closes it.
type EditorFunc func(editor, path string) error

// PromptFunc asks for one line of input.
type PromptFunc func(msg string) (string, error)

// App bundles the services with the process streams. Tests replace the
// streams and the interactive hooks.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Blog    *blog.Service
	Library *library.Service

	Editor       EditorFunc
	Prompt       PromptFunc
	ReadPassword func() (string, error)
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
}

func New(cfg *config.Config, db *gorm.DB, blogSvc *blog.Service, librarySvc *library.Service) *App {
	a := &App{
		Config:  cfg,
		DB:      db,
		Blog:    blogSvc,
		Library: librarySvc,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	a.Editor = execEditor
	a.Prompt = a.stdinPrompt
	a.ReadPassword = readPassword
	return a
}

func execEditor(editor, path string) error {
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (a *App) stdinPrompt(msg string) (string, error) {
	fmt.Fprint(a.Stderr, msg)
	var line string
	if _, err := fmt.Fscanln(a.Stdin, &line); err != nil {
		return "", err
	}
	return line, nil
}

func readPassword() (string, error) {
	pw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return string(pw), nil
}

func defaultEditor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

func (a *App) eprintf(format string, args ...interface{}) {
	fmt.Fprintf(a.Stderr, format+"\n", args...)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Stdout, format+"\n", args...)
}

// RootCommand is the full command tree for the binary.
func (a *App) RootCommand() *cli.Command {
	return &cli.Command{
		Name:  "netsoc",
		Usage: "Society website server and content management tools",
		Commands: []*cli.Command{
			a.serverCommand(),
			a.importCommand(),
			a.postsCommand(),
			a.booksCommand(),
		},
	}
}
