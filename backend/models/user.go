package models

import "gorm.io/gorm"

const (
	RoleStudent  = "student"
	RoleEducator = "educator"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:student"` // student, educator, admin
	AvatarURL    string
}

// IsPrivilegedRole reports whether the user is excluded from leaderboard ranking.
func (u *User) IsPrivilegedRole() bool {
	return u.Role == RoleEducator || u.Role == RoleAdmin
}

// UserAggregate is the denormalized total score across all of a user's
// course progress records. It is incremented in the same transaction as the
// lecture completion that earned the points.
type UserAggregate struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex;not null"`
	TotalScore int  `gorm:"not null;default:0"`
}
