package dto

import (
	"slices"

	"yamdb/internal/microservices/http-api/models"
)

// CreateUserRequest for POST /users (admin)
type CreateUserRequest struct {
	Deferred

	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// UpdateUserRequest is a partial update; nil fields are left as they are.
// It serves both PATCH /users/{username} and PATCH /users/me.
type UpdateUserRequest struct {
	Deferred

	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// Fields names the attributes present in the payload.
func (r UpdateUserRequest) Fields() []string {
	var fields []string
	if r.Username != nil {
		fields = append(fields, "username")
	}
	if r.Email != nil {
		fields = append(fields, "email")
	}
	if r.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if r.LastName != nil {
		fields = append(fields, "last_name")
	}
	if r.Bio != nil {
		fields = append(fields, "bio")
	}
	if r.Role != nil {
		fields = append(fields, "role")
	}
	// a mistyped field was still sent, so it counts towards the permission check
	if r.field != "" && !slices.Contains(fields, r.field) {
		fields = append(fields, r.field)
	}
	return fields
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
