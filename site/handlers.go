package site

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"netsoc/blog"
	"netsoc/constants"
	"netsoc/database"
	"netsoc/library"
)

func (s *Site) home(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	posts, total, err := s.blog.ListPage(page, constants.POSTS_PER_PAGE)
	if err != nil {
		http.Error(w, "Error fetching posts", http.StatusInternalServerError)
		return
	}

	totalPages := int(total) / constants.POSTS_PER_PAGE
	if int(total)%constants.POSTS_PER_PAGE != 0 {
		totalPages++
	}

	prevPage, nextPage := 0, 0
	if page > 1 {
		prevPage = page - 1
	}
	if page < totalPages {
		nextPage = page + 1
	}

	s.renderTemplate(w, r, "home", struct {
		Posts      []database.BlogPost
		Page       int
		TotalPages int
		PrevPage   int
		NextPage   int
	}{posts, page, totalPages, prevPage, nextPage})
}

func (s *Site) post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := s.blog.Get(uint(id))
	if errors.Is(err, blog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching post", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, r, "post", post)
}

func (s *Site) libraryListing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	query := library.SearchQuery{
		Field: q.Get("search"),
		Key:   q.Get("key"),
		Sort:  q.Get("sort"),
		Dir:   q.Get("dir"),
		Page:  page,
	}

	books, err := s.library.Search(query)
	if err != nil {
		http.Error(w, "Error searching books: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.renderTemplate(w, r, "library", struct {
		Books  []database.Book
		Search string
		Key    string
	}{books, query.Field, query.Key})
}

func (s *Site) book(w http.ResponseWriter, r *http.Request) {
	book, err := s.library.Get(chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching book", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, r, "book", book)
}
