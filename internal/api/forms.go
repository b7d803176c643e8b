package api

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/blogicum/blogicum/internal/models"
)

// pubDateLayout is the HTML datetime-local layout accepted for pub_date
const pubDateLayout = "2006-01-02T15:04"

var (
	usernamePattern   = regexp.MustCompile(`^[\w.@+-]+$`)
	registerValidator sync.Once
)

// Checkbox is a form boolean. Unchecked boxes are absent, checked ones send
// their value ("on" unless the input sets one). Only "", "false" and "0"
// read as false.
type Checkbox bool

// UnmarshalParam implements binding.BindUnmarshaler
func (b *Checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "", "false", "0":
		*b = false
	default:
		*b = true
	}
	return nil
}

// PostForm is submitted to create or edit a post
type PostForm struct {
	Title       string    `form:"title" json:"title" binding:"required,max=256"`
	Text        string    `form:"text" json:"text" binding:"required"`
	PubDate     time.Time `form:"pub_date" json:"pub_date" time_format:"2006-01-02T15:04" time_utc:"1" binding:"required"`
	IsPublished Checkbox  `form:"is_published" json:"is_published"`
	CategoryID  *int64    `form:"category" json:"category" binding:"required"`
	LocationID  *int64    `form:"location" json:"location,omitempty"`
	Image       string    `form:"-" json:"image,omitempty"`
}

func postFormFrom(post *models.Post) *PostForm {
	return &PostForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate,
		IsPublished: Checkbox(post.IsPublished),
		CategoryID:  post.CategoryID,
		LocationID:  post.LocationID,
		Image:       post.Image,
	}
}

func (f *PostForm) apply(post *models.Post) {
	post.Title = f.Title
	post.Text = f.Text
	post.PubDate = f.PubDate.UTC()
	post.IsPublished = bool(f.IsPublished)
	post.CategoryID = f.CategoryID
	post.LocationID = f.LocationID
}

// CommentForm is submitted to add or edit a comment
type CommentForm struct {
	Text string `form:"text" json:"text" binding:"required"`
}

// ProfileForm edits the caller's own profile
type ProfileForm struct {
	Username  string `form:"username" json:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Email     string `form:"email" json:"email" binding:"omitempty,email,max=254"`
}

func profileFormFrom(user *models.User) *ProfileForm {
	return &ProfileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

func (f *ProfileForm) apply(user *models.User) {
	user.Username = f.Username
	user.FirstName = f.FirstName
	user.LastName = f.LastName
	user.Email = f.Email
}

// RegistrationForm signs up a new user
type RegistrationForm struct {
	Username  string `form:"username" json:"username" binding:"required,max=150,username"`
	Email     string `form:"email" json:"email" binding:"required,email,max=254"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Password  string `form:"password" json:"-" binding:"required,min=8,max=72"`
}

// LoginForm exchanges credentials for a token
type LoginForm struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"-" binding:"required"`
}

// registerValidators names field errors after form keys and adds the
// username rule to gin's validator
func registerValidators() {
	registerValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegisterValidation(v, "username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// bindForm binds the request body into form, returning a validation error
// that echoes the form on failure
func bindForm(c *gin.Context, form interface{}) error {
	if err := c.ShouldBind(form); err != nil {
		return ValidationError(fieldErrors(err), form)
	}
	return nil
}

// fieldErrors turns binding errors into a field -> message map. Errors that
// are not tied to a field are reported under "__all__".
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"__all__": "Malformed form data."}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Enter a valid value."
	}
}
