package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"netsoc/library"
)

// editText opens the editor on a temporary file seeded with seed and returns
// the file contents on exit. A file the editor never saved (modification time
// unchanged) counts as cancellation.
func (a *App) editText(editor, seed, suffix string) (string, error) {
	tmp, err := os.CreateTemp("", "post-*"+suffix)
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(seed); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	before, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if err := a.Editor(editor, path); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if after.ModTime().Equal(before.ModTime()) {
		return "", ErrCancelled
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// editBook round-trips an EditableBook through the editor as indented JSON,
// then asks for confirmation: y commits, e reopens the editor, anything else
// cancels. An untouched file also cancels.
func (a *App) editBook(editor string, book library.EditableBook) (library.EditableBook, error) {
	tmp, err := os.CreateTemp("", "book-*.json")
	if err != nil {
		return book, err
	}
	path := tmp.Name()
	defer os.Remove(path)

	initial, err := json.MarshalIndent(book, "", "    ")
	if err != nil {
		tmp.Close()
		return book, err
	}
	if _, err := tmp.Write(initial); err != nil {
		tmp.Close()
		return book, err
	}
	if err := tmp.Close(); err != nil {
		return book, err
	}

	lastStat, err := os.Stat(path)
	if err != nil {
		return book, err
	}

	for {
		if err := a.Editor(editor, path); err != nil {
			return book, fmt.Errorf("editor failed: %w", err)
		}

		stat, err := os.Stat(path)
		if err != nil {
			return book, err
		}
		if stat.ModTime().Equal(lastStat.ModTime()) {
			return book, ErrCancelled
		}
		lastStat = stat

		data, err := os.ReadFile(path)
		if err != nil {
			return book, err
		}

		var edited library.EditableBook
		parseErr := json.Unmarshal(data, &edited)
		if parseErr != nil {
			a.eprintf("> ERROR: %v", parseErr)
		} else {
			pretty, _ := json.MarshalIndent(edited, "", "    ")
			fmt.Fprintln(a.Stdout, string(pretty))
		}

		answer, err := a.Prompt("Confirm book data (y) edit (e) or cancel: ")
		if err != nil {
			return book, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			if parseErr != nil {
				// Cannot confirm a file that does not parse.
				continue
			}
			return edited, nil
		case "e":
			continue
		default:
			return book, ErrCancelled
		}
	}
}
