package user

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,storable,email,max=255"`
	Username string `json:"username" validate:"required,storable,min=3,max=50"`
	Name     string `json:"name" validate:"required,storable,min=2,max=50"`
	Surname  string `json:"surname" validate:"required,storable,min=2,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// EditProfileRequest changes only the fields that are present.
type EditProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,storable,email,max=255"`
	Username *string `json:"username" validate:"omitempty,storable,min=3,max=50"`
	Name     *string `json:"name" validate:"omitempty,storable,min=2,max=50"`
	Surname  *string `json:"surname" validate:"omitempty,storable,min=2,max=50"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72"`
}

type IDResponse struct {
	ID int64 `json:"id"`
}
