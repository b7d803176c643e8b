package api

import (
	"context"
	"time"

	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/paginate"
)

// PostStore is the post persistence used by the handlers
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListVisible(ctx context.Context, page string, perPage int) (*paginate.Page[models.Post], error)
	ListVisibleInCategory(ctx context.Context, categoryID int64, page string, perPage int) (*paginate.Page[models.Post], error)
	ListByAuthor(ctx context.Context, authorID int64, page string, perPage int) (*paginate.Page[models.Post], error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
}

// CommentStore is the comment persistence used by the handlers
type CommentStore interface {
	ListForPost(ctx context.Context, postID int64) ([]models.Comment, error)
	GetForPost(ctx context.Context, postID, id int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, comment *models.Comment) error
}

// CategoryStore looks up categories
type CategoryStore interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// LocationStore looks up locations
type LocationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
}

// UserStore is the account persistence used by the handlers
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// Limiter counts hits on key within a fixed window
type Limiter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// Revoker remembers logged out tokens
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
