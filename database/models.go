package database

import (
	"time"

	"gorm.io/datatypes"
)

// User is a blog post author. Users are created on first reference by name
// and never updated afterwards. Name matching is exact and case-sensitive.
type User struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"uniqueIndex;not null"`

	Posts []*BlogPost `gorm:"many2many:blog_post_authors;"`
}

type BlogPost struct {
	ID     uint      `gorm:"primarykey"`
	Title  string    `gorm:"type:text;not null"`
	Time   time.Time `gorm:"not null"`
	Edited time.Time `gorm:"not null"`

	// Markdown is the optional editing source; HTML is always present and is
	// re-derived from Markdown whenever the Markdown changes.
	Markdown *string `gorm:"type:longtext"`
	HTML     string  `gorm:"type:longtext;not null"`

	Authors []*User `gorm:"many2many:blog_post_authors;"`
}

// BookAuthor lives in the `authors` table, separate from blog users.
type BookAuthor struct {
	ID       uint   `gorm:"primarykey"`
	Name     string `gorm:"uniqueIndex;not null"`
	Bio      string `gorm:"type:text"`
	Link     string
	ImageURL string

	Books []*Book `gorm:"many2many:book_authors;"`
}

func (BookAuthor) TableName() string { return "authors" }

type BookType string

const (
	BookTypeEducation  BookType = "education"
	BookTypeLiterature BookType = "literature"
)

// Book is a catalogued library book. ISBN13 is the canonical uniqueness key;
// CallNumber is derived at creation time and must be unique per shelf.
type Book struct {
	ID          uint    `gorm:"primarykey"`
	Title       string  `gorm:"type:text;not null"`
	CallNumber  string  `gorm:"column:callnumber;uniqueIndex;not null"`
	ISBN        *string `gorm:"column:isbn;uniqueIndex"`
	ISBN13      string  `gorm:"column:isbn13;uniqueIndex;not null"`
	ImageURL    string
	Publisher   string
	Description string `gorm:"type:longtext"`
	Rating      float64
	NumPages    int
	Edition     string
	Type        BookType `gorm:"type:varchar(16);default:education"`

	// Raw payload from the metadata provider, kept for operator debugging.
	SourceData datatypes.JSON

	Authors []*BookAuthor `gorm:"many2many:book_authors;"`
}

func (Book) TableName() string { return "library" }

// SearchColumns is every column of the library table, in declaration order.
// The "all fields" search ORs a LIKE filter across the whole list, numeric
// columns included.
var SearchColumns = []string{
	"id",
	"title",
	"callnumber",
	"isbn",
	"isbn13",
	"image_url",
	"publisher",
	"description",
	"rating",
	"num_pages",
	"edition",
	"type",
}
