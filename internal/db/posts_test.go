package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/internal/models"
)

func dryRunPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)
	return gdb.Session(&gorm.Session{DryRun: true})
}

func TestGetPostsSQL(t *testing.T) {
	tests := []struct {
		name        string
		annotate    bool
		contains    []string
		notContains []string
	}{
		{
			name:     "annotated",
			annotate: true,
			contains: []string{
				"COUNT(blog_comment.id) AS comment_count",
				"JOIN blog_category ON blog_category.id = blog_post.category_id",
				"LEFT JOIN blog_comment ON blog_comment.post_id = blog_post.id",
				"blog_post.is_published = $1",
				"blog_category.is_published = $2",
				"blog_post.pub_date <= $3",
				"GROUP BY \"blog_post\".\"id\"",
				"ORDER BY blog_post.pub_date DESC,blog_post.id DESC",
			},
		},
		{
			name:     "plain",
			annotate: false,
			contains: []string{
				"SELECT blog_post.*",
				"blog_post.pub_date <= $3",
				"ORDER BY blog_post.pub_date DESC",
			},
			notContains: []string{"blog_comment", "GROUP BY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posts []models.Post
			stmt := GetPosts(dryRunPostgres(t).Model(&models.Post{}), tt.annotate).Find(&posts).Statement
			sql := stmt.SQL.String()

			for _, fragment := range tt.contains {
				assert.Contains(t, sql, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, sql, fragment)
			}
			require.Len(t, stmt.Vars, 3)
			assert.Equal(t, true, stmt.Vars[0])
			assert.Equal(t, true, stmt.Vars[1])
		})
	}
}
