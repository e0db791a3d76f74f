// Package form defines the submission forms and their validation rules.
// Validation failures come back as a field→message map so handlers can
// re-render the form with inline errors and a 200 status.
package form

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PostForm backs both post creation and editing. The image upload is
// handled separately by the handler; only its extension is validated there.
type PostForm struct {
	Text    string `form:"text" validate:"required"`
	GroupID string `form:"group" validate:"omitempty,uuid4"`
}

type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

type SignupForm struct {
	Username string `form:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Validate runs the struct rules and returns one message per failing field,
// keyed by the lowercased field name. An empty map means the form is valid.
func Validate(f any) map[string]string {
	errs := map[string]string{}
	err := validate.Struct(f)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = "invalid submission"
		return errs
	}
	for _, fe := range verrs {
		errs[fieldName(fe)] = message(fe)
	}
	return errs
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "GroupID":
		return "group"
	default:
		return strings.ToLower(fe.Field())
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "alphanum":
		return "Use letters and digits only."
	case "min":
		return "Too short (minimum " + fe.Param() + " characters)."
	case "max":
		return "Too long (maximum " + fe.Param() + " characters)."
	case "uuid4":
		return "Unknown group."
	default:
		return "Invalid value."
	}
}
