package model

const (
	// RoleAdmin is the role of the wiki administrators.
	RoleAdmin = "ADMIN"
	// RoleUser is the default role.
	RoleUser = "USER"
)

// A User represents a database record.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Name     string `json:"name"  msgpack:"name"`
	Email    string `json:"email" msgpack:"email" storm:"unique" bun:",unique,notnull"`
	Phone    string `json:"phone" msgpack:"phone" storm:"unique" bun:",unique,notnull"`
	Password string `json:"-"     msgpack:"password,omitempty"`
	Role     string `json:"role"  msgpack:"role"  storm:"index"`

	PasswordUpdatedAt int64 `json:"-" msgpack:"password_updated_at"`
}

// NewUser returns a new user with default params.
func NewUser() *User {
	return &User{
		Role: RoleUser,
	}
}

// IsAdmin returns true if the user is an administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
