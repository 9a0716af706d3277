package service

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
)

const (
	maxNameLength     = 100
	maxPasswordLength = 72 // bcrypt input limit, applied to both algorithms
)

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"` // optional, defaults to student
	InstituteID string `json:"instituteId"`
}

func (in *RegisterInput) normalize() {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.InstituteID = strings.TrimSpace(in.InstituteID)
}

func (in RegisterInput) validate(minPassword int) error {
	return newValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPassword, maxPasswordLength)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Role, validation.In(selfAssignableRoles()...).Error("must be student, teacher or faculty")),
	))
}

func selfAssignableRoles() []interface{} {
	var out []interface{}
	for _, r := range domain.AllRoles() {
		if r.SelfAssignable() {
			out = append(out, string(r))
		}
	}
	return out
}

func allRoleNames() []interface{} {
	var out []interface{}
	for _, r := range domain.AllRoles() {
		out = append(out, string(r))
	}
	return out
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in loginInput) validate() error {
	return newValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	))
}

// CreateUserInput is an admin creating an account; any role is allowed.
type CreateUserInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	InstituteID string `json:"instituteId"`
}

func (in *CreateUserInput) normalize() {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.InstituteID = strings.TrimSpace(in.InstituteID)
}

func (in CreateUserInput) validate(minPassword int) error {
	return newValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPassword, maxPasswordLength)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Role, validation.Required, validation.In(allRoleNames()...)),
	))
}

// UpdateUserInput is a partial admin update; nil fields are unchanged.
type UpdateUserInput struct {
	Name   *string
	Role   *string
	Active *bool
}

func (in UpdateUserInput) validate() error {
	errs := validation.Errors{}
	if in.Name != nil {
		errs["name"] = validation.Validate(strings.TrimSpace(*in.Name),
			validation.Required, validation.Length(1, maxNameLength))
	}
	if in.Role != nil {
		errs["role"] = validation.Validate(strings.ToLower(strings.TrimSpace(*in.Role)),
			validation.Required, validation.In(allRoleNames()...))
	}
	return newValidationError(errs.Filter())
}
