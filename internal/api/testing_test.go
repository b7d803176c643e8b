package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/db"
	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/pkg/config"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// memoryKV stands in for redis as login limiter and token revoker
type memoryKV struct {
	mu      sync.Mutex
	counts  map[string]int64
	revoked map[string]bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{counts: map[string]int64{}, revoked: map[string]bool{}}
}

func (m *memoryKV) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, key)
	return nil
}

func (m *memoryKV) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryKV) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	router *Router
	engine *gin.Engine
	media  *mockStorage
	kv     *memoryKV

	users      *db.UserRepository
	categories *db.CategoryRepository
	locations  *db.LocationRepository
	posts      *db.PostRepository
	comments   *db.CommentRepository
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTL:      time.Hour,
			CookieName:    "blogicum_token",
			LoginAttempts: 3,
			LoginWindow:   time.Minute,
		},
		Blog:      config.BlogConfig{PostsPerPage: 10},
		Storage:   config.StorageConfig{Backend: "local", LocalBaseURL: "/media/"},
		Telemetry: config.TelemetryConfig{ServiceName: "blogicum"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.New(&config.DatabaseConfig{
		Driver:       "sqlite",
		URL:          fmt.Sprintf("file:api_%s?mode=memory&cache=shared&_foreign_keys=1", name),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	media := &mockStorage{}
	router := NewRouter(testConfig(), database, nil, media)
	kv := newMemoryKV()
	router.limiter = kv
	router.revoker = kv

	engine := gin.New()
	router.SetupRoutes(engine)

	repo := db.NewRepository(database.DB)
	return &testEnv{
		t:          t,
		ctx:        context.Background(),
		router:     router,
		engine:     engine,
		media:      media,
		kv:         kv,
		users:      db.NewUserRepository(repo),
		categories: db.NewCategoryRepository(repo),
		locations:  db.NewLocationRepository(repo),
		posts:      db.NewPostRepository(repo),
		comments:   db.NewCommentRepository(repo),
	}
}

func (e *testEnv) user(username string) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(e.t, e.users.Create(e.ctx, user))
	return user
}

func (e *testEnv) token(user *models.User) string {
	token, _, err := e.router.tokens.Issue(user.ID, user.Username)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) category(slug string, published bool) *models.Category {
	category := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(e.t, e.categories.Create(e.ctx, category))
	return category
}

func (e *testEnv) post(author *models.User, category *models.Category, pubDate time.Time, published bool) *models.Post {
	post := &models.Post{
		Title:       "title",
		Text:        "text",
		PubDate:     pubDate.UTC().Truncate(time.Second),
		IsPublished: published,
		AuthorID:    author.ID,
		CategoryID:  &category.ID,
	}
	require.NoError(e.t, e.posts.Create(e.ctx, post))
	return post
}

func (e *testEnv) comment(author *models.User, post *models.Post, text string) *models.Comment {
	comment := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	require.NoError(e.t, e.comments.Create(e.ctx, comment))
	return comment
}

// do sends a request with an urlencoded body when form is non-nil
func (e *testEnv) do(method, target string, form url.Values, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return e.serve(req, token)
}

// upload sends a multipart form with a single file field named "image"
func (e *testEnv) upload(target string, form url.Values, filename string, content []byte, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range form {
		for _, v := range values {
			require.NoError(e.t, w.WriteField(key, v))
		}
	}
	part, err := w.CreateFormFile("image", filename)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.serve(req, token)
}

func (e *testEnv) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

type pageBody struct {
	PageObj struct {
		Items    []models.Post `json:"object_list"`
		Number   int           `json:"number"`
		NumPages int           `json:"num_pages"`
		Count    int64         `json:"count"`
	} `json:"page_obj"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func postIDs(posts []models.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func postForm(categoryID int64, pubDate time.Time) url.Values {
	return url.Values{
		"title":        {"Hello"},
		"text":         {"World"},
		"pub_date":     {pubDate.UTC().Format(pubDateLayout)},
		"is_published": {"true"},
		"category":     {fmt.Sprint(categoryID)},
	}
}

// ensure the interfaces line up with the repositories
var (
	_ PostStore     = (*db.PostRepository)(nil)
	_ CommentStore  = (*db.CommentRepository)(nil)
	_ CategoryStore = (*db.CategoryRepository)(nil)
	_ LocationStore = (*db.LocationRepository)(nil)
	_ UserStore     = (*db.UserRepository)(nil)
	_ Limiter       = (*memoryKV)(nil)
	_ Revoker       = (*memoryKV)(nil)
)
