package users

import "time"

// User is a registered account. The password hash never leaves the process
// in serialized form.
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	EmailIsVerified bool      `json:"emailIsVerified"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateUserRequest represents the request body for registering an account
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=254"`
	Username  string  `json:"username" binding:"required,min=3,max=50"`
	Password  string  `json:"password" binding:"required,min=6,max=72"`
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,max=100"`
}

// UpdateUserRequest represents the request body for updating an account
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	Username  *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Password  *string `json:"password,omitempty" binding:"omitempty,min=6,max=72"`
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,max=100"`
}

// Changes is the column-level form of an update. Nil fields are left as is.
type Changes struct {
	Email        *string
	Username     *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
}

func (c Changes) empty() bool {
	return c.Email == nil && c.Username == nil && c.PasswordHash == nil &&
		c.FirstName == nil && c.LastName == nil
}
