package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/models"
)

// addComment attaches a comment to any existing post. Invalid input is
// dropped and the caller is sent back to the post either way.
func (r *Router) addComment(c *gin.Context) (interface{}, error) {
	post, err := r.loadPost(c)
	if err != nil {
		return nil, err
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		r.logger.Debug("Dropped invalid comment", zap.Int64("post_id", post.ID), zap.Error(err))
		return Redirect(postURL(post.ID)), nil
	}

	ctx := c.Request.Context()
	comment := &models.Comment{
		Text:     form.Text,
		PostID:   post.ID,
		AuthorID: viewer(c).ID,
	}
	if err := r.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	r.metrics.commentsCreated.Add(ctx, 1)
	return Redirect(postURL(post.ID)), nil
}

// loadComment fetches the :cid comment of post :id or fails with 404
func (r *Router) loadComment(c *gin.Context) (*models.Comment, error) {
	postID, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	commentID, err := pathID(c, "cid")
	if err != nil {
		return nil, err
	}

	comment, err := r.comments.GetForPost(c.Request.Context(), postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound()
	}
	return comment, nil
}

func (r *Router) editComment(c *gin.Context) (interface{}, error) {
	comment, err := r.loadComment(c)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthoredBy(viewer(c)) {
		return Redirect(postURL(comment.PostID)), nil
	}
	if c.Request.Method != http.MethodPost {
		return gin.H{"form": CommentForm{Text: comment.Text}, "comment": comment}, nil
	}

	form := &CommentForm{}
	if err := bindForm(c, form); err != nil {
		return nil, err
	}
	comment.Text = form.Text
	if err := r.comments.Update(c.Request.Context(), comment); err != nil {
		return nil, err
	}
	return Redirect(postURL(comment.PostID)), nil
}

func (r *Router) deleteComment(c *gin.Context) (interface{}, error) {
	comment, err := r.loadComment(c)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthoredBy(viewer(c)) {
		return Redirect(postURL(comment.PostID)), nil
	}
	if c.Request.Method != http.MethodPost {
		return gin.H{"comment": comment}, nil
	}

	if err := r.comments.Delete(c.Request.Context(), comment); err != nil {
		return nil, err
	}
	return Redirect(postURL(comment.PostID)), nil
}
