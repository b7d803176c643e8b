package api

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("author")
	reader := env.user("reader")
	open := env.category("open", true)
	post := env.post(author, open, time.Now().Add(-time.Hour), true)
	commentURL := fmt.Sprintf("/posts/%d/comment/", post.ID)

	rec := env.do(http.MethodPost, commentURL, url.Values{"text": {"Nice"}}, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/auth/login/?next=")

	rec = env.do(http.MethodPost, commentURL, url.Values{"text": {"Nice"}}, env.token(reader))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(post.ID), rec.Header().Get("Location"))

	// an empty comment is dropped but still redirects
	rec = env.do(http.MethodPost, commentURL, url.Values{"text": {""}}, env.token(reader))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(post.ID), rec.Header().Get("Location"))

	comments, err := env.comments.ListForPost(env.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice", comments[0].Text)
	assert.Equal(t, reader.ID, comments[0].AuthorID)

	page, err := env.posts.ListVisible(env.ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 1, page.Items[0].CommentCount)

	rec = env.do(http.MethodPost, "/posts/9999/comment/", url.Values{"text": {"Nice"}}, env.token(reader))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("author")
	reader := env.user("reader")
	open := env.category("open", true)
	post := env.post(author, open, time.Now().Add(-time.Hour), true)
	comment := env.comment(reader, post, "original")
	editURL := fmt.Sprintf("/posts/%d/comment/%d/edit/", post.ID, comment.ID)

	// the post author does not own the comment
	rec := env.do(http.MethodPost, editURL, url.Values{"text": {"hijacked"}}, env.token(author))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(post.ID), rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, editURL, nil, env.token(reader))
	require.Equal(t, http.StatusOK, rec.Code)
	var formBody struct {
		Form CommentForm `json:"form"`
	}
	decode(t, rec, &formBody)
	assert.Equal(t, "original", formBody.Form.Text)

	rec = env.do(http.MethodPost, editURL, url.Values{"text": {""}}, env.token(reader))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, editURL, url.Values{"text": {"edited"}}, env.token(reader))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(post.ID), rec.Header().Get("Location"))

	got, err := env.comments.GetForPost(env.ctx, post.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
}

func TestCommentLookupIsScopedToPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("author")
	open := env.category("open", true)
	post := env.post(author, open, time.Now().Add(-time.Hour), true)
	other := env.post(author, open, time.Now().Add(-time.Hour), true)
	comment := env.comment(author, post, "mine")

	rec := env.do(http.MethodGet, fmt.Sprintf("/posts/%d/comment/%d/edit/", other.ID, comment.ID), nil, env.token(author))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, fmt.Sprintf("/posts/%d/comment/%d/delete/", other.ID, comment.ID), url.Values{}, env.token(author))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("author")
	reader := env.user("reader")
	open := env.category("open", true)
	post := env.post(author, open, time.Now().Add(-time.Hour), true)
	comment := env.comment(reader, post, "bye")
	deleteURL := fmt.Sprintf("/posts/%d/comment/%d/delete/", post.ID, comment.ID)

	rec := env.do(http.MethodPost, deleteURL, url.Values{}, env.token(author))
	require.Equal(t, http.StatusFound, rec.Code)
	got, err := env.comments.GetForPost(env.ctx, post.ID, comment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	rec = env.do(http.MethodGet, deleteURL, nil, env.token(reader))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, deleteURL, url.Values{}, env.token(reader))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(post.ID), rec.Header().Get("Location"))

	got, err = env.comments.GetForPost(env.ctx, post.ID, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
