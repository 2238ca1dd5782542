// Package library implements the book catalog: CRUD, search, and creation
// from an ISBN with external metadata enrichment.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"netsoc/bookdata"
	"netsoc/constants"
	"netsoc/database"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrAlreadyExists = errors.New("ISBN already in db")
)

// MetadataClient is what the service needs from bookdata; tests swap in a
// fake.
type MetadataClient interface {
	Lookup(ctx context.Context, isbn string) (*bookdata.BookInfo, error)
	Classify(ctx context.Context, isbn, title string) (string, error)
	ScrapeCoverImage(ctx context.Context, pageURL string) (string, error)
}

type Service struct {
	db    *gorm.DB
	books MetadataClient
}

func NewService(db *gorm.DB, books MetadataClient) *Service {
	return &Service{db: db, books: books}
}

// List returns books ordered by id, newest first (oldest first on reverse).
// limit == 0 means no limit.
func (s *Service) List(limit int, reverse bool) ([]database.Book, error) {
	order := "id DESC"
	if reverse {
		order = "id ASC"
	}

	query := s.db.Preload("Authors").Order(order)
	if limit != 0 {
		query = query.Limit(limit)
	}

	var books []database.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Get accepts a catalog id, an ISBN-10 or an ISBN-13 and returns the first
// match across the three.
func (s *Service) Get(key string) (*database.Book, error) {
	var book database.Book
	err := s.db.Preload("Authors").
		Where("id = ? OR isbn = ? OR isbn13 = ?", key, key, key).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("book #%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SearchQuery selects books by substring match. Field "authors" matches
// against author names through the join table; field "all" (or an empty
// field with a key) ORs the filter across every library column, numeric ones
// included. Sort and Dir are validated against the column list.
type SearchQuery struct {
	Field   string
	Key     string
	Sort    string
	Dir     string
	Page    int
	PerPage int
}

func validColumn(name string) bool {
	for _, col := range database.SearchColumns {
		if col == name {
			return true
		}
	}
	return false
}

func (s *Service) Search(q SearchQuery) ([]database.Book, error) {
	pattern := "%" + q.Key + "%"

	query := s.db.Model(&database.Book{}).Preload("Authors")

	switch {
	case q.Field == "authors":
		query = query.
			Joins("JOIN book_authors ON book_authors.book_id = library.id").
			Joins("JOIN authors ON authors.id = book_authors.book_author_id").
			Where("authors.name LIKE ?", pattern).
			Group("library.id")
	case q.Field == "all" || q.Field == "":
		if q.Key != "" {
			conds := make([]string, len(database.SearchColumns))
			args := make([]interface{}, len(database.SearchColumns))
			for i, col := range database.SearchColumns {
				conds[i] = col + " LIKE ?"
				args[i] = pattern
			}
			query = query.Where(strings.Join(conds, " OR "), args...)
		}
	default:
		if !validColumn(q.Field) {
			return nil, fmt.Errorf("unknown search field %q", q.Field)
		}
		query = query.Where(q.Field+" LIKE ?", pattern)
	}

	sort := "id"
	if q.Sort != "" {
		if !validColumn(q.Sort) {
			return nil, fmt.Errorf("unknown sort field %q", q.Sort)
		}
		sort = q.Sort
	}
	dir := "ASC"
	if strings.EqualFold(q.Dir, "desc") {
		dir = "DESC"
	}
	query = query.Order(sort + " " + dir)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = constants.BOOKS_PER_PAGE
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query = query.Offset((page - 1) * perPage).Limit(perPage)

	var books []database.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// AuthorInput is one author reference on a create or edit.
type AuthorInput struct {
	Name     string `json:"name"`
	Link     string `json:"link,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// CreateFromISBN fetches metadata and classification for an ISBN and inserts
// the book. The returned notes list flags degraded results ("No DDC",
// "No IMG") that did not stop the creation. A book already catalogued under
// the same ISBN is ErrAlreadyExists and inserts nothing.
func (s *Service) CreateFromISBN(ctx context.Context, isbn string, bookType database.BookType) (*database.Book, []string, error) {
	var count int64
	err := s.db.Model(&database.Book{}).
		Where("isbn = ? OR isbn13 = ?", isbn, isbn).
		Count(&count).Error
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, fmt.Errorf("%s: %w", isbn, ErrAlreadyExists)
	}

	info, err := s.books.Lookup(ctx, isbn)
	if err != nil {
		return nil, nil, err
	}
	if len(info.Authors) == 0 {
		return nil, nil, fmt.Errorf("%s: provider returned no authors", isbn)
	}

	var notes []string

	ddc, err := s.books.Classify(ctx, isbn, info.Title)
	if err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("classification lookup failed")
		ddc = ""
	}
	if ddc == "" {
		notes = append(notes, "No DDC")
		ddc = constants.MISSING_DDC
	}

	cn, err := s.nextCallNumber(ddc, info.Authors[0].Name)
	if err != nil {
		return nil, nil, err
	}

	imageURL := info.ImageURL
	if bookdata.IsPlaceholderImage(imageURL) {
		alt, err := s.books.ScrapeCoverImage(ctx, info.Link)
		if err != nil {
			log.Warn().Err(err).Str("isbn", isbn).Msg("cover image scrape failed")
			notes = append(notes, "No IMG")
		} else {
			imageURL = alt
		}
	}

	inputs := make([]AuthorInput, len(info.Authors))
	for i, a := range info.Authors {
		inputs[i] = AuthorInput{Name: a.Name, Link: a.Link, ImageURL: a.ImageURL}
	}
	authors, err := s.findOrMakeAuthors(inputs)
	if err != nil {
		return nil, nil, err
	}

	// The provider payload is XML; encode it as a JSON string so it fits the
	// JSON column.
	sourceData, err := json.Marshal(string(info.Raw))
	if err != nil {
		return nil, nil, err
	}

	book := database.Book{
		Title:       info.Title,
		CallNumber:  cn,
		ISBN13:      info.ISBN13,
		ImageURL:    imageURL,
		Publisher:   info.Publisher,
		Description: info.Description,
		Rating:      info.Rating,
		NumPages:    info.NumPages,
		Type:        bookType,
		SourceData:  datatypes.JSON(sourceData),
		Authors:     authors,
	}
	if info.ISBN != "" {
		book.ISBN = &info.ISBN
	}
	if book.ISBN13 == "" {
		book.ISBN13 = isbn
	}

	if err := s.db.Create(&book).Error; err != nil {
		return nil, nil, fmt.Errorf("commit failure: %w", err)
	}
	return &book, notes, nil
}

// EditableBook is the explicit schema of fields the manual-add and edit flows
// expose. It is what gets serialized into the editor's temporary file, so the
// edit surface is static rather than discovered by reflection.
type EditableBook struct {
	Title       string        `json:"title"`
	CallNumber  string        `json:"callnumber"`
	ISBN        string        `json:"isbn"`
	ISBN13      string        `json:"isbn13"`
	ImageURL    string        `json:"image_url"`
	Publisher   string        `json:"publisher"`
	Description string        `json:"description"`
	Rating      float64       `json:"rating"`
	NumPages    int           `json:"num_pages"`
	Edition     string        `json:"edition"`
	Type        string        `json:"type"`
	Authors     []AuthorInput `json:"authors,omitempty"`
}

func (e EditableBook) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.CallNumber, validation.Required),
		validation.Field(&e.ISBN13, validation.Required),
	)
}

// Editable converts a stored book into the editor representation.
func Editable(book *database.Book, withAuthors bool) EditableBook {
	e := EditableBook{
		Title:       book.Title,
		CallNumber:  book.CallNumber,
		ISBN13:      book.ISBN13,
		ImageURL:    book.ImageURL,
		Publisher:   book.Publisher,
		Description: book.Description,
		Rating:      book.Rating,
		NumPages:    book.NumPages,
		Edition:     book.Edition,
		Type:        string(book.Type),
	}
	if book.ISBN != nil {
		e.ISBN = *book.ISBN
	}
	if withAuthors {
		for _, a := range book.Authors {
			e.Authors = append(e.Authors, AuthorInput{Name: a.Name, Link: a.Link, ImageURL: a.ImageURL})
		}
	}
	return e
}

// CreateManual inserts a book from hand-entered fields, no remote calls.
func (s *Service) CreateManual(e EditableBook) (*database.Book, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	authors, err := s.findOrMakeAuthors(e.Authors)
	if err != nil {
		return nil, err
	}

	book := database.Book{
		Title:       e.Title,
		CallNumber:  e.CallNumber,
		ISBN13:      e.ISBN13,
		ImageURL:    e.ImageURL,
		Publisher:   e.Publisher,
		Description: e.Description,
		Rating:      e.Rating,
		NumPages:    e.NumPages,
		Edition:     e.Edition,
		Type:        database.BookTypeEducation,
		Authors:     authors,
	}
	if e.ISBN != "" {
		book.ISBN = &e.ISBN
	}
	if e.Type != "" {
		book.Type = database.BookType(e.Type)
	}

	if err := s.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("commit failure: %w", err)
	}
	return &book, nil
}

// Edit bulk-replaces a book's fields. Empty values leave the stored field
// alone. When replaceAuthors is set the previous author set is discarded in
// favor of the one in the edit.
func (s *Service) Edit(id uint, e EditableBook, replaceAuthors bool) (*database.Book, error) {
	book, err := s.Get(fmt.Sprint(id))
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if e.Title != "" {
		updates["title"] = e.Title
	}
	if e.CallNumber != "" {
		updates["callnumber"] = e.CallNumber
	}
	if e.ISBN != "" {
		updates["isbn"] = e.ISBN
	}
	if e.ISBN13 != "" {
		updates["isbn13"] = e.ISBN13
	}
	if e.ImageURL != "" {
		updates["image_url"] = e.ImageURL
	}
	if e.Publisher != "" {
		updates["publisher"] = e.Publisher
	}
	if e.Description != "" {
		updates["description"] = e.Description
	}
	if e.Rating != 0 {
		updates["rating"] = e.Rating
	}
	if e.NumPages != 0 {
		updates["num_pages"] = e.NumPages
	}
	if e.Edition != "" {
		updates["edition"] = e.Edition
	}
	if e.Type != "" {
		updates["type"] = e.Type
	}

	if len(updates) > 0 {
		if err := s.db.Model(book).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("commit failure: %w", err)
		}
	}

	if replaceAuthors {
		authors, err := s.findOrMakeAuthors(e.Authors)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(book).Association("Authors").Replace(authors); err != nil {
			return nil, err
		}
		book.Authors = authors
	}

	return book, nil
}

func (s *Service) Delete(id uint) error {
	book, err := s.Get(fmt.Sprint(id))
	if err != nil {
		return err
	}
	if err := s.db.Model(book).Association("Authors").Clear(); err != nil {
		return err
	}
	return s.db.Delete(book).Error
}

// findOrMakeAuthors resolves author names against the authors table, exact
// case-sensitive match, creating missing rows via upsert on the unique name
// index.
func (s *Service) findOrMakeAuthors(inputs []AuthorInput) ([]*database.BookAuthor, error) {
	authors := make([]*database.BookAuthor, 0, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			continue
		}
		author := database.BookAuthor{
			Name:     in.Name,
			Link:     in.Link,
			ImageURL: in.ImageURL,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&author).Error
		if err != nil {
			return nil, err
		}
		if author.ID == 0 {
			if err := s.db.Where("name = ?", in.Name).First(&author).Error; err != nil {
				return nil, err
			}
		}
		authors = append(authors, &author)
	}
	return authors, nil
}
