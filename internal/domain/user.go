package domain

import "time"

// User is an account that can log in and be assigned tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Profile is the public part of a user returned on login.
type Profile struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// Agent is the read-only projection of a user used as an assignment label.
type Agent struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Profile returns the public projection of u.
func (u *User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, Role: u.Role}
}

// Agent returns the assignment projection of u.
func (u *User) Agent() Agent {
	return Agent{ID: u.ID, Name: u.Name, Email: u.Email}
}
