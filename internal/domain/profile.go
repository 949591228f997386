package domain

import "time" // Timestamps

// Profile Model, one per auth identity
type Profile struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`                   // Primary key, matches the auth identity
	Username     string    `gorm:"size:100;not null;index" json:"username"`        // Display name
	StudentID    string    `gorm:"size:50;uniqueIndex;not null" json:"student_id"` // Student or member id
	Phone        string    `gorm:"size:30;uniqueIndex;not null" json:"phone"`      // Phone number
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`     // Login email
	PasswordHash string    `gorm:"not null" json:"-"`                              // Hashed password
	Role         string    `gorm:"size:20;default:user" json:"role"`               // Role: user or admin
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`                     // Public avatar link
	Wallet       *Wallet   `gorm:"foreignKey:WalletID;references:ID" json:"wallet,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated caller, passed explicitly into every operation
type Identity struct {
	ProfileID string // Profile and wallet id
	Role      string // Role claim from the token
}

// Valid reports whether the identity carries a profile id
func (i Identity) Valid() bool {
	return i.ProfileID != ""
}
