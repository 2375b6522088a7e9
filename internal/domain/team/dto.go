package team

import (
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
)

type TeamResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	ManagerID   string   `json:"managerId"`
	MemberIDs   []string `json:"memberIds,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func NewTeamResponse(t Team, memberIDs []string) TeamResponse {
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		ManagerID:   t.ManagerID,
		MemberIDs:   memberIDs,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

type MembershipResponse struct {
	TeamID    string `json:"teamId"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

type CreateTeamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ManagerID   string  `json:"managerId"`
}

func (r *CreateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must be at most 100 characters")
	}

	if validator.IsEmpty(r.ManagerID) {
		errs.Add("managerId", "managerId is required")
	} else if !validator.IsValidUUID(r.ManagerID) {
		errs.Add("managerId", "managerId must be a valid UUID")
	}

	return errs.Err()
}

type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ManagerID   *string `json:"managerId,omitempty"`
}

func (r *UpdateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 100 {
			errs.Add("name", "name must be at most 100 characters")
		}
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs.Add("managerId", "managerId must be a valid UUID")
	}

	return errs.Err()
}

type AddMemberRequest struct {
	UserID string `json:"userId"`
}

func (r *AddMemberRequest) Validate() error {
	if validator.IsEmpty(r.UserID) {
		return validator.Single("userId", "userId is required")
	}
	if !validator.IsValidUUID(r.UserID) {
		return validator.Single("userId", "userId must be a valid UUID")
	}
	return nil
}
