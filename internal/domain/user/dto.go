package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	Profile       string  `json:"profile"`
	LatenessCount int     `json:"latenessCount"`
	LatenessMonth *string `json:"latenessMonth,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// Summary is the compact user reference embedded in clock and KPI payloads.
type Summary struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Firstname:     u.Firstname,
		Lastname:      u.Lastname,
		Email:         u.Email,
		Phone:         u.Phone,
		Profile:       string(u.Role),
		LatenessCount: u.LatenessCount,
		LatenessMonth: u.LatenessMonth,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

func NewSummary(u User) Summary {
	return Summary{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname}
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password"`
	Profile   string  `json:"profile"`

	role Role
}

// Role returns the parsed profile; valid only after Validate succeeds.
func (r *CreateUserRequest) Role() Role { return r.role }

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Firstname) {
		errs.Add("firstname", "firstname is required")
	}
	if validator.IsEmpty(r.Lastname) {
		errs.Add("lastname", "lastname is required")
	}

	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "invalid phone number")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	if validator.IsEmpty(r.Profile) {
		r.role = RoleEmployee
	} else if role, err := ParseRole(r.Profile); err != nil {
		errs.Add("profile", "profile must be one of admin, manager, employee")
	} else {
		r.role = role
	}

	return errs.Err()
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty"`
	Profile   *string `json:"profile,omitempty"`

	role *Role
}

// Role returns the parsed profile, nil when unchanged.
func (r *UpdateUserRequest) Role() *Role { return r.role }

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Firstname != nil && validator.IsEmpty(*r.Firstname) {
		errs.Add("firstname", "firstname must not be empty")
	}
	if r.Lastname != nil && validator.IsEmpty(*r.Lastname) {
		errs.Add("lastname", "lastname must not be empty")
	}

	if r.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*r.Email))
		r.Email = &email
		if !validator.IsValidEmail(email) {
			errs.Add("email", "invalid email format")
		}
	}

	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "invalid phone number")
	}

	if r.Password != nil && len(*r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	if r.Profile != nil {
		role, err := ParseRole(*r.Profile)
		if err != nil {
			errs.Add("profile", "profile must be one of admin, manager, employee")
		} else {
			r.role = &role
		}
	}

	return errs.Err()
}
