package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered citizen or a division admin.
// The core only consumes ID, Role and Division for authorization decisions.
type User struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	FullName   string     `json:"fullName"`
	Email      string     `gorm:"uniqueIndex" json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	Password   string     `json:"-"`
	Role       string     `gorm:"index;default:user" json:"role"`
	Division   string     `gorm:"index" json:"division,omitempty"` // required for admins
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	LoginCount int        `gorm:"default:0" json:"loginCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// BeforeCreate generates a new UUID when the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
