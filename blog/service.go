package blog

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"netsoc/database"
)

var ErrNotFound = errors.New("post not found")

// Service holds the blog-post operations. Handlers and CLI commands both go
// through here; neither touches gorm directly.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns posts ordered by last-edited time, newest first (oldest first
// when reverse is set). limit == 0 means no limit.
func (s *Service) List(limit int, reverse bool) ([]database.BlogPost, error) {
	order := "edited DESC"
	if reverse {
		order = "edited ASC"
	}

	query := s.db.Preload("Authors").Order(order)
	if limit != 0 {
		query = query.Limit(limit)
	}

	var posts []database.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListPage paginates posts by creation time for the home page.
func (s *Service) ListPage(page, perPage int) ([]database.BlogPost, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.Model(&database.BlogPost{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []database.BlogPost
	err := s.db.Preload("Authors").
		Order("time DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *Service) Get(id uint) (*database.BlogPost, error) {
	var post database.BlogPost
	err := s.db.Preload("Authors").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("post #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// NewPost is the input for Create. Exactly one of Markdown or HTML should be
// set; when Markdown is set the stored HTML is derived from it.
type NewPost struct {
	Title    string
	Authors  []string
	Markdown string
	HTML     string
}

func (p NewPost) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Authors, validation.Required, validation.Length(1, 0)),
		validation.Field(&p.HTML, validation.Required.When(p.Markdown == "").Error("either a Markdown or an HTML body is required")),
	)
}

func (s *Service) Create(input NewPost) (*database.BlogPost, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	authors, err := s.findOrMakeUsers(input.Authors)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := database.BlogPost{
		Title:   input.Title,
		Time:    now,
		Edited:  now,
		Authors: authors,
	}

	if input.Markdown != "" {
		post.Markdown = &input.Markdown
		post.HTML = RenderMarkdown(input.Markdown)
	} else {
		post.HTML = input.HTML
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateImported inserts a post carried over from the legacy blog. The HTML
// body is stored verbatim and the original timestamps are preserved.
func (s *Service) CreateImported(title string, authorNames []string, htmlBody string, created time.Time) (*database.BlogPost, error) {
	authors, err := s.findOrMakeUsers(authorNames)
	if err != nil {
		return nil, err
	}

	post := database.BlogPost{
		Title:   title,
		Time:    created,
		Edited:  created,
		HTML:    htmlBody,
		Authors: authors,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// HasImported reports whether an imported post with this title and creation
// time already exists, so re-running an import does not duplicate posts.
func (s *Service) HasImported(title string, created time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&database.BlogPost{}).
		Where("title = ? AND time = ?", title, created).
		Count(&count).Error
	return count > 0, err
}

// PostUpdate carries a partial update; nil pointers leave the field alone.
// Setting Markdown re-derives the HTML body. Setting HTML directly clears the
// stored Markdown, since it no longer matches.
type PostUpdate struct {
	Title    *string
	Authors  []string
	Markdown *string
	HTML     *string
}

func (s *Service) Update(id uint, up PostUpdate) (*database.BlogPost, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if up.Title != nil {
		post.Title = *up.Title
	}
	if up.Markdown != nil {
		post.Markdown = up.Markdown
		post.HTML = RenderMarkdown(*up.Markdown)
	} else if up.HTML != nil {
		post.HTML = *up.HTML
		post.Markdown = nil
	}
	post.Edited = time.Now()

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}

	if up.Authors != nil {
		authors, err := s.findOrMakeUsers(up.Authors)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(post).Association("Authors").Replace(authors); err != nil {
			return nil, err
		}
		post.Authors = authors
	}

	return post, nil
}

func (s *Service) Delete(id uint) error {
	post, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(post).Association("Authors").Clear(); err != nil {
		return err
	}
	return s.db.Delete(post).Error
}

// findOrMakeUsers resolves author names to rows, creating missing ones. The
// insert goes through ON CONFLICT DO NOTHING against the unique name index,
// so two concurrent requests for the same new name cannot both insert.
func (s *Service) findOrMakeUsers(names []string) ([]*database.User, error) {
	users := make([]*database.User, 0, len(names))
	for _, name := range names {
		user := database.User{Name: name}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&user).Error
		if err != nil {
			return nil, err
		}
		if user.ID == 0 {
			// Conflict: the row already existed, read it back.
			if err := s.db.Where("name = ?", name).First(&user).Error; err != nil {
				return nil, err
			}
		}
		users = append(users, &user)
	}
	return users, nil
}
