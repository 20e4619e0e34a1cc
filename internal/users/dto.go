package users

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangeRoleRequest is the payload for assigning a role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetActiveRequest toggles the active flag.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
