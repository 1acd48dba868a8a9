package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInfluencer UserRole = "INFLUENCER"
	RoleBrand      UserRole = "BRAND"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleInfluencer, RoleBrand:
		return true
	}
	return false
}

// User is the identity record. The role is fixed for the lifetime of the
// account; onboarding completion is derived from the existence of the
// role-matching profile row, never stored here.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      UserRole       `gorm:"size:20;not null" json:"role"`
	WalletID  *uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
