package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/storage"
)

func postURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound()
	}
	return id, nil
}

// loadPost fetches the post named by the :id path parameter or fails with 404
func (r *Router) loadPost(c *gin.Context) (*models.Post, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.Int64("post.id", id))

	post, err := r.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound()
	}
	return post, nil
}

// index lists visible posts, newest first
func (r *Router) index(c *gin.Context) (interface{}, error) {
	page, err := r.posts.ListVisible(c.Request.Context(), c.Query("page"), r.cfg.Blog.PostsPerPage)
	if err != nil {
		return nil, err
	}
	return gin.H{"page_obj": page}, nil
}

// postDetail shows a post with its comments. Authors see their own posts
// whatever their visibility; everyone else gets 404 for hidden posts.
func (r *Router) postDetail(c *gin.Context) (interface{}, error) {
	post, err := r.loadPost(c)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(viewer(c)) && !post.IsVisibleAt(time.Now().UTC()) {
		return nil, ErrNotFound()
	}

	comments, err := r.comments.ListForPost(c.Request.Context(), post.ID)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"post":     post,
		"comments": comments,
		"form":     CommentForm{},
	}, nil
}

// categoryPosts lists the visible posts of a published category
func (r *Router) categoryPosts(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	category, err := r.categories.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound()
	}

	page, err := r.posts.ListVisibleInCategory(ctx, category.ID, c.Query("page"), r.cfg.Blog.PostsPerPage)
	if err != nil {
		return nil, err
	}
	return gin.H{"category": category, "page_obj": page}, nil
}

// postFormContext is what the create and edit pages render
func (r *Router) postFormContext(ctx context.Context, form *PostForm) (gin.H, error) {
	categories, err := r.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := r.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"form": form, "categories": categories, "locations": locations}, nil
}

// bindPostForm binds and validates a post form, including its references
func (r *Router) bindPostForm(c *gin.Context) (*PostForm, error) {
	form := &PostForm{}
	if err := bindForm(c, form); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	fields := map[string]string{}
	category, err := r.categories.GetByID(ctx, *form.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		fields["category"] = "Select a valid choice."
	}
	if form.LocationID != nil {
		location, err := r.locations.GetByID(ctx, *form.LocationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			fields["location"] = "Select a valid choice."
		}
	}
	if len(fields) > 0 {
		return nil, ValidationError(fields, form)
	}
	return form, nil
}

// uploadImage stores the optional "image" upload and returns its URL, or ""
// when nothing was uploaded
func (r *Router) uploadImage(c *gin.Context, form *PostForm) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", ValidationError(map[string]string{"image": "Upload a valid image."}, form)
	}

	name, err := storage.ObjectName("posts", file.Filename)
	if err != nil {
		return "", ValidationError(map[string]string{"image": "Upload a valid image."}, form)
	}
	return r.saveUpload(c.Request.Context(), name, file)
}

func (r *Router) saveUpload(ctx context.Context, name string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	url, err := r.media.Save(ctx, name, file.Header.Get("Content-Type"), src)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

// discardImage removes a stored image; failures are only logged
func (r *Router) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := r.media.Delete(ctx, url); err != nil {
		r.logger.Warn("Failed to delete image", zap.String("url", url), zap.Error(err))
	}
}

// createPost shows the empty form on GET and creates a post on POST
func (r *Router) createPost(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	if c.Request.Method != http.MethodPost {
		return r.postFormContext(ctx, &PostForm{IsPublished: true})
	}

	user := viewer(c)
	form, err := r.bindPostForm(c)
	if err != nil {
		return nil, err
	}
	image, err := r.uploadImage(c, form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: user.ID, Image: image}
	form.apply(post)
	if err := r.posts.Create(ctx, post); err != nil {
		r.discardImage(ctx, image)
		return nil, err
	}

	r.metrics.postsCreated.Add(ctx, 1)
	r.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.String("author", user.Username))
	return Redirect(profileURL(user.Username)), nil
}

// editPost lets the author change a post; anyone else is sent back to it
func (r *Router) editPost(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	post, err := r.loadPost(c)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(viewer(c)) {
		return Redirect(postURL(post.ID)), nil
	}
	if c.Request.Method != http.MethodPost {
		return r.postFormContext(ctx, postFormFrom(post))
	}

	form, err := r.bindPostForm(c)
	if err != nil {
		return nil, err
	}
	image, err := r.uploadImage(c, form)
	if err != nil {
		return nil, err
	}

	previous := post.Image
	form.apply(post)
	if image != "" {
		post.Image = image
	}
	if err := r.posts.Update(ctx, post); err != nil {
		r.discardImage(ctx, image)
		return nil, err
	}
	if image != "" {
		r.discardImage(ctx, previous)
	}

	return Redirect(postURL(post.ID)), nil
}

// deletePost asks for confirmation on GET and deletes on POST
func (r *Router) deletePost(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	post, err := r.loadPost(c)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(viewer(c)) {
		return Redirect(postURL(post.ID)), nil
	}
	if c.Request.Method != http.MethodPost {
		return gin.H{"post": post, "form": postFormFrom(post)}, nil
	}

	if err := r.posts.Delete(ctx, post); err != nil {
		return nil, err
	}
	r.discardImage(ctx, post.Image)

	r.metrics.postsDeleted.Add(ctx, 1)
	r.logger.Info("Post deleted", zap.Int64("post_id", post.ID))
	return Redirect("/"), nil
}
