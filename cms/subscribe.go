package cms

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SubscribeRequest is a newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email" form:"email" validate:"required,email,max=254"`
	Name  string `json:"name,omitempty" form:"name" validate:"max=100"`
}

// Normalize trims whitespace and lowercases the email address.
func (r *SubscribeRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks the request against its field rules.
func (r SubscribeRequest) Validate() error {
	return validate.Struct(r)
}
