package models

import "github.com/notdulain/OAuth-Learning/internal/util"

// User is a resource owner that can sign in at the authorization server.
// Password holds either a plaintext secret or a bcrypt hash.
type User struct {
	ID       string
	Username string
	Password string
	Name     string
	Email    string

	EmailVerified bool
}

// HasHashedPassword returns true if Password is a bcrypt hash
func (u *User) HasHashedPassword() bool {
	return util.IsBcryptHash(u.Password)
}
