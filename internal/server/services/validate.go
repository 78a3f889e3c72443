package services

import (
	"regexp"
	"strings"

	"github.com/jrafaels/test-fauth/internal/common"
)

// emailPattern is deliberately loose: one @, something on each side, a dot in
// the domain. Real validation happens when the address receives mail.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CreateUserInput carries the signup payload into UserService.Create.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Country   string
	City      string
	BirthDate string
	Password  string
}

// UpdateUserInput carries the mutable profile fields. Email and password are
// not updatable through this path.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Country   string
	City      string
	BirthDate string
}

func validateCreateUser(in *CreateUserInput) error {
	var fields []common.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, common.FieldError{Field: "first_name", Message: "First name is required."})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, common.FieldError{Field: "last_name", Message: "Last name is required."})
	}
	if !validEmail(in.Email) {
		fields = append(fields, common.FieldError{Field: "email", Message: "Email is not valid."})
	}
	if len(fields) > 0 {
		return common.Validation("Invalid user data", fields...)
	}
	return nil
}

func validateUpdateUser(in *UpdateUserInput) error {
	var fields []common.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, common.FieldError{Field: "first_name", Message: "First name is required."})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, common.FieldError{Field: "last_name", Message: "Last name is required."})
	}
	if len(fields) > 0 {
		return common.Validation("Invalid user data", fields...)
	}
	return nil
}
