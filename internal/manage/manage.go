package manage

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/db"
	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/pkg/logging"
)

// maxSlugLen matches the blog_category.slug column
const maxSlugLen = 64

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Manager runs the maintenance tasks that have no HTTP endpoint: schema
// migration and the category and location catalogue.
type Manager struct {
	db         *db.DB
	categories *db.CategoryRepository
	locations  *db.LocationRepository
	logger     *zap.Logger
}

// New creates a new manager
func New(database *db.DB) *Manager {
	repo := db.NewRepository(database.DB)
	return &Manager{
		db:         database,
		categories: db.NewCategoryRepository(repo),
		locations:  db.NewLocationRepository(repo),
		logger:     logging.WithComponent("manage"),
	}
}

// Migrate creates or updates the schema
func (m *Manager) Migrate(ctx context.Context) error {
	if err := m.db.Migrate(ctx); err != nil {
		return err
	}
	m.logger.Info("Schema migrated")
	return nil
}

// AddCategory creates a category. Slugs are unique and limited to latin
// letters, digits, hyphen and underscore.
func (m *Manager) AddCategory(ctx context.Context, title, slug, description string, published bool) (*models.Category, error) {
	if title == "" || utf8.RuneCountInString(title) > 256 {
		return nil, fmt.Errorf("title must be 1 to 256 characters")
	}
	if len(slug) > maxSlugLen {
		return nil, fmt.Errorf("slug must be at most %d characters", maxSlugLen)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("invalid slug %q", slug)
	}

	existing, err := m.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists", slug)
	}

	category := &models.Category{
		Title:       title,
		Slug:        slug,
		Description: description,
		IsPublished: published,
	}
	if err := m.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	m.logger.Info("Category created", zap.String("slug", slug), zap.Bool("published", published))
	return category, nil
}

// SetCategoryPublished publishes or hides a category, and with it every
// post filed under it
func (m *Manager) SetCategoryPublished(ctx context.Context, slug string, published bool) error {
	category, err := m.categories.GetBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("category %q not found", slug)
	}

	category.IsPublished = published
	if err := m.categories.Update(ctx, category); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	m.logger.Info("Category updated", zap.String("slug", slug), zap.Bool("published", published))
	return nil
}

// Categories lists every category
func (m *Manager) Categories(ctx context.Context) ([]models.Category, error) {
	return m.categories.List(ctx)
}

// AddLocation creates a location
func (m *Manager) AddLocation(ctx context.Context, name string, published bool) (*models.Location, error) {
	if name == "" || utf8.RuneCountInString(name) > 256 {
		return nil, fmt.Errorf("name must be 1 to 256 characters")
	}

	location := &models.Location{Name: name, IsPublished: published}
	if err := m.locations.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	m.logger.Info("Location created", zap.String("name", name))
	return location, nil
}

// Locations lists every location
func (m *Manager) Locations(ctx context.Context) ([]models.Location, error) {
	return m.locations.List(ctx)
}
