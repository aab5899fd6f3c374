package model

import "time"

const (
	UserTypeDeveloper    = 1
	UserTypeProjectOwner = 2
)

// User mirrors an identity owned by the external auth provider.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"unique;size:150" binding:"required"`
	Email     string    `json:"email" gorm:"size:254"`
	FirstName string    `json:"first_name" gorm:"size:30"`
	LastName  string    `json:"last_name" gorm:"size:30"`
	Type      int       `json:"type"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.IsStaff
}

func (u *User) IsDeveloper() bool {
	return u != nil && u.Type == UserTypeDeveloper
}

func (u *User) IsProjectOwner() bool {
	return u != nil && u.Type == UserTypeProjectOwner
}

// ShortName is what email greetings and milestone descriptions use.
func (u *User) ShortName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Connection links two users; an accepted connection puts them in each
// other's team.
type Connection struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID uint      `json:"from_user" gorm:"index:idx_connection_pair,unique"`
	ToUserID   uint      `json:"to_user" gorm:"index:idx_connection_pair,unique"`
	Accepted   *bool     `json:"accepted"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
