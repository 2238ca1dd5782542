package cli

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Legacy WordPress schema, read-only. Only the columns the import touches
// are mapped.
type wordPressUser struct {
	ID        uint64 `gorm:"column:ID;primarykey"`
	UserLogin string `gorm:"column:user_login"`
}

func (wordPressUser) TableName() string { return "news_wp_users" }

type wordPressPost struct {
	ID         uint64    `gorm:"column:ID;primarykey"`
	PostAuthor uint64    `gorm:"column:post_author"`
	PostDate   time.Time `gorm:"column:post_date"`
	PostTitle  string    `gorm:"column:post_title"`
	PostText   string    `gorm:"column:post_content"`
	PostStatus string    `gorm:"column:post_status"`
	PostType   string    `gorm:"column:post_type"`
}

func (wordPressPost) TableName() string { return "news_wp_posts" }

func (a *App) importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import blog posts from the legacy WordPress database",
		ArgsUsage: "<address> <database> <user>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 3306, Usage: "MySQL port"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			address := cmd.Args().Get(0)
			dbName := cmd.Args().Get(1)
			user := cmd.Args().Get(2)
			if address == "" || dbName == "" || user == "" {
				return fmt.Errorf("usage: import <address> [-p PORT] <database> <user>")
			}

			a.eprintf("Password for %s@%s: ", user, address)
			password, err := a.ReadPassword()
			if err != nil {
				return err
			}

			return a.runImport(address, int(cmd.Int("port")), dbName, user, password)
		},
	}
}

func (a *App) runImport(address string, port int, dbName, user, password string) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		user, password, address, port, dbName)

	wpdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to WordPress database: %w", err)
	}
	defer func() {
		if sqlDB, err := wpdb.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var posts []wordPressPost
	err = wpdb.Where("post_status = ? AND post_type = ?", "publish", "post").
		Order("post_date ASC").
		Find(&posts).Error
	if err != nil {
		return fmt.Errorf("failed to read WordPress posts: %w", err)
	}

	imported, skipped := 0, 0
	for _, post := range posts {
		var author wordPressUser
		if err := wpdb.First(&author, post.PostAuthor).Error; err != nil {
			log.Warn().Uint64("post", post.ID).Uint64("author", post.PostAuthor).Msg("author missing, skipping post")
			skipped++
			continue
		}

		// Titles come HTML-entity-escaped out of WordPress; bodies are
		// carried over verbatim.
		title := html.UnescapeString(post.PostTitle)

		exists, err := a.Blog.HasImported(title, post.PostDate)
		if err != nil {
			return err
		}
		if exists {
			skipped++
			continue
		}

		created, err := a.Blog.CreateImported(title, []string{author.UserLogin}, post.PostText, post.PostDate)
		if err != nil {
			return fmt.Errorf("failed to import %q: %w", title, err)
		}

		a.printf("Imported %q by %s (%s) as #%d", title, author.UserLogin, post.PostDate.Format("2006-01-02"), created.ID)
		imported++
	}

	a.printf("Imported %d post(s), skipped %d", imported, skipped)
	return nil
}
