package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"netsoc/blog"
	"netsoc/bookdata"
	"netsoc/config"
	"netsoc/database"
	"netsoc/library"
)

type fakeMetadata struct {
	title   string
	authors []bookdata.Author
	ddc     string
}

func (f *fakeMetadata) Lookup(_ context.Context, isbn string) (*bookdata.BookInfo, error) {
	return &bookdata.BookInfo{
		Title:    f.title,
		Authors:  f.authors,
		ISBN13:   isbn,
		ImageURL: "https://images.example.com/cover.jpg",
		Raw:      []byte("<book/>"),
	}, nil
}

func (f *fakeMetadata) Classify(_ context.Context, _, _ string) (string, error) {
	return f.ddc, nil
}

func (f *fakeMetadata) ScrapeCoverImage(_ context.Context, _ string) (string, error) {
	return "", bookdata.ErrNoCoverImage
}

type testApp struct {
	*App
	db     *gorm.DB
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.Open(database.SQLite(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	fake := &fakeMetadata{
		title:   "Test Driven Development",
		authors: []bookdata.Author{{Name: "Kent Beck"}},
		ddc:     "005.1",
	}

	app := New(&config.Config{Development: true}, db, blog.NewService(db), library.NewService(db, fake))
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app.Stdout, app.Stderr = stdout, stderr
	return &testApp{App: app, db: db, stdout: stdout, stderr: stderr}
}

// noopEditor leaves the temporary file untouched.
func noopEditor(_, _ string) error { return nil }

// writingEditor replaces the file contents and bumps the modification time
// so the change is always detected.
func writingEditor(content string) EditorFunc {
	return func(_, path string) error {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}
		future := time.Now().Add(2 * time.Second)
		return os.Chtimes(path, future, future)
	}
}

func answer(s string) PromptFunc {
	return func(string) (string, error) { return s, nil }
}

func TestPostBodySelection(t *testing.T) {
	md := "# heading"
	withMarkdown := &database.BlogPost{Markdown: &md, HTML: blog.RenderMarkdown(md)}
	htmlOnly := &database.BlogPost{HTML: "<p>legacy</p>"}

	body, warnings, err := postBody(withMarkdown, false, false)
	require.NoError(t, err)
	assert.Equal(t, md, body)
	assert.Empty(t, warnings)

	body, warnings, err = postBody(withMarkdown, true, false)
	require.NoError(t, err)
	assert.Equal(t, blog.RenderMarkdown(md), body)
	assert.Empty(t, warnings)

	body, warnings, err = postBody(htmlOnly, false, false)
	require.NoError(t, err)
	assert.Equal(t, "<p>legacy</p>", body, "HTML is emitted verbatim")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Markdown unavailable")

	body, warnings, err = postBody(htmlOnly, false, true)
	require.NoError(t, err)
	assert.Contains(t, body, "legacy")
	assert.NotContains(t, body, "<p>")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Converting HTML to Markdown")
}

func TestGetPostEmitsBodyToStdout(t *testing.T) {
	a := newTestApp(t)

	post, err := a.Blog.Create(blog.NewPost{Title: "T", Authors: []string{"alice"}, HTML: "<p>only html</p>"})
	require.NoError(t, err)

	require.NoError(t, a.getPost(post.ID, false, false))
	assert.Equal(t, "<p>only html</p>\n", a.stdout.String())
	assert.Contains(t, a.stderr.String(), "Title: T")
	assert.Contains(t, a.stderr.String(), "Markdown unavailable")
}

func TestNewPostCancelled(t *testing.T) {
	a := newTestApp(t)
	a.Editor = noopEditor

	require.NoError(t, a.newPost("T", []string{"alice"}, false, "vi"))
	assert.Contains(t, a.stdout.String(), "Post cancelled")

	var count int64
	require.NoError(t, a.db.Model(&database.BlogPost{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewPostFromEditor(t *testing.T) {
	a := newTestApp(t)
	a.Editor = writingEditor("# written in editor\n")

	require.NoError(t, a.newPost("T", []string{"alice"}, false, "vi"))

	posts, err := a.Blog.List(0, false)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].Markdown)
	assert.Equal(t, "# written in editor\n", *posts[0].Markdown)
}

func seedBook(t *testing.T, a *testApp) *database.Book {
	t.Helper()
	book, err := a.Library.CreateManual(library.EditableBook{
		Title:      "Refactoring",
		CallNumber: "005.1 FOW",
		ISBN13:     "9780134757599",
		Publisher:  "Addison-Wesley",
		Authors:    []library.AuthorInput{{Name: "Martin Fowler"}},
	})
	require.NoError(t, err)
	return book
}

func TestEditBookUntouchedFileCancels(t *testing.T) {
	a := newTestApp(t)
	book := seedBook(t, a)

	a.Editor = noopEditor
	require.NoError(t, a.editBookCommand(fmt.Sprint(book.ID), false, "vi"))
	assert.Contains(t, a.stdout.String(), "Edit cancelled")

	got, err := a.Library.Get(fmt.Sprint(book.ID))
	require.NoError(t, err)
	assert.Equal(t, "Refactoring", got.Title)
	assert.Equal(t, "Addison-Wesley", got.Publisher)
}

func TestEditBookCancelAtPrompt(t *testing.T) {
	a := newTestApp(t)
	book := seedBook(t, a)

	a.Editor = writingEditor(`{"title": "Vandalized"}`)
	a.Prompt = answer("n")

	require.NoError(t, a.editBookCommand(fmt.Sprint(book.ID), false, "vi"))
	assert.Contains(t, a.stdout.String(), "Edit cancelled")

	got, err := a.Library.Get(fmt.Sprint(book.ID))
	require.NoError(t, err)
	assert.Equal(t, "Refactoring", got.Title)
}

func TestEditBookConfirmed(t *testing.T) {
	a := newTestApp(t)
	book := seedBook(t, a)

	a.Editor = writingEditor(`{"publisher": "New Press"}`)
	a.Prompt = answer("y")

	require.NoError(t, a.editBookCommand(fmt.Sprint(book.ID), false, "vi"))

	got, err := a.Library.Get(fmt.Sprint(book.ID))
	require.NoError(t, err)
	assert.Equal(t, "New Press", got.Publisher)
	assert.Equal(t, "Refactoring", got.Title, "fields left empty in the editor stay put")
}

func TestAddBooksReportsDuplicates(t *testing.T) {
	a := newTestApp(t)
	seedBook(t, a)

	require.NoError(t, a.addBooks(context.Background(), []string{"9780134757599"}, false))
	assert.Contains(t, a.stderr.String(), "ISBN already in db")

	var count int64
	require.NoError(t, a.db.Model(&database.Book{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddBooksBatch(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.addBooks(context.Background(), []string{"9780321146533", "9780321146534"}, false))

	out := a.stderr.String()
	assert.Contains(t, out, "9780321146533")
	assert.Contains(t, out, "ADDED as #")

	books, err := a.Library.List(0, true)
	require.NoError(t, err)
	require.Len(t, books, 2)
	// Second copy of the same work gets a collision suffix.
	assert.Equal(t, "005.1 BEC", books[0].CallNumber)
	assert.Equal(t, "005.1 BEC (1)", books[1].CallNumber)
}
