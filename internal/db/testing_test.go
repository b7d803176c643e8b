package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/pkg/config"
)

// newTestDB opens a private in-memory sqlite database with the blog schema
func newTestDB(t *testing.T) *DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := New(&config.DatabaseConfig{
		Driver:       "sqlite",
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.Migrate(context.Background()))
	return database
}

type fixture struct {
	t          *testing.T
	ctx        context.Context
	repo       *Repository
	users      *UserRepository
	categories *CategoryRepository
	posts      *PostRepository
	comments   *CommentRepository
}

func newFixture(t *testing.T) *fixture {
	repo := NewRepository(newTestDB(t).DB)
	return &fixture{
		t:          t,
		ctx:        context.Background(),
		repo:       repo,
		users:      NewUserRepository(repo),
		categories: NewCategoryRepository(repo),
		posts:      NewPostRepository(repo),
		comments:   NewCommentRepository(repo),
	}
}

func (f *fixture) user(username string) *models.User {
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(f.t, f.users.Create(f.ctx, user))
	return user
}

func (f *fixture) category(slug string, published bool) *models.Category {
	category := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(f.t, f.categories.Create(f.ctx, category))
	return category
}

func (f *fixture) post(author *models.User, category *models.Category, pubDate time.Time, published bool) *models.Post {
	post := &models.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     pubDate.UTC().Truncate(time.Second),
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	require.NoError(f.t, f.posts.Create(f.ctx, post))
	return post
}

func (f *fixture) comment(author *models.User, post *models.Post) *models.Comment {
	comment := &models.Comment{Text: "nice", PostID: post.ID, AuthorID: author.ID}
	require.NoError(f.t, f.comments.Create(f.ctx, comment))
	return comment
}

func ids(posts []models.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
