package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// profile lists every post of a user, hidden ones included
func (r *Router) profile(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	user, err := r.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound()
	}

	page, err := r.posts.ListByAuthor(ctx, user.ID, c.Query("page"), r.cfg.Blog.PostsPerPage)
	if err != nil {
		return nil, err
	}
	return gin.H{"profile": user, "page_obj": page}, nil
}

// editProfile updates the caller's own account
func (r *Router) editProfile(c *gin.Context) (interface{}, error) {
	user := viewer(c)
	if c.Request.Method != http.MethodPost {
		return gin.H{"form": profileFormFrom(user)}, nil
	}

	form := &ProfileForm{}
	if err := bindForm(c, form); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	taken, err := r.users.UsernameTaken(ctx, form.Username, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ValidationError(map[string]string{"username": "A user with that username already exists."}, form)
	}

	form.apply(user)
	if err := r.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return Redirect(profileURL(user.Username)), nil
}
