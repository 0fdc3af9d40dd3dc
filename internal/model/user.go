package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a consumer, a business owner or an administrator
type User struct {
	BaseModel
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password      string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName      string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber   string     `gorm:"type:varchar(20)" json:"phone_number"`
	RoleID        *uint      `gorm:"index" json:"role_id"`
	Role          *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	WalletAddress string     `gorm:"type:varchar(42)" json:"wallet_address,omitempty"`
	CarbonCredits int64      `gorm:"default:0" json:"carbon_credits"` // grams CO2e credited so far
	TokenVersion  string     `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`

	Businesses []Business `gorm:"foreignKey:OwnerID" json:"businesses,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

func (u *User) IsAdmin() bool {
	return u.RoleCode() == RoleAdmin
}

// GetPrivilegeCodes returns the privilege codes granted by the user's role
func (u *User) GetPrivilegeCodes() []string {
	if u.Role == nil {
		return []string{}
	}
	return u.Role.PrivilegeCodes()
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	WalletAddress string     `json:"wallet_address,omitempty"`
	CarbonCredits int64      `json:"carbon_credits"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		PhoneNumber:   u.PhoneNumber,
		Role:          u.RoleCode(),
		IsActive:      u.IsActive,
		WalletAddress: u.WalletAddress,
		CarbonCredits: u.CarbonCredits,
		LastSeenAt:    u.LastSeenAt,
		CreatedAt:     u.CreatedAt,
	}
}
