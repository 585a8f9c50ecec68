// Package validation configures the request validator and the custom tags
// used by profile and shortcut input.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Avatars is the fixed set of selectable avatars.
var Avatars = []string{
	"avatar1", "avatar2", "avatar3", "avatar4", "avatar5", "avatar6",
	"avatar7", "avatar8", "avatar9", "avatar10", "avatar11", "avatar12",
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// New returns a validator with the "username" and "avatar" tags registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("avatar", func(fl validator.FieldLevel) bool {
		return IsAvatar(fl.Field().String())
	})
	return v
}

// IsAvatar reports whether name is one of Avatars.
func IsAvatar(name string) bool {
	for _, a := range Avatars {
		if a == name {
			return true
		}
	}
	return false
}

// Messages flattens a validation error into field -> message, the shape the
// HTTP layer returns. Non-validation errors map to a single "body" entry.
func Messages(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"body": err.Error()}
	}
	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return messages
}
