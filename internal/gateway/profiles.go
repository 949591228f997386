package gateway

import (
	"context" // Deadlines
	"strings" // Search escaping

	"campus_wallet/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Opening balance
	"gorm.io/gorm"                  // GORM ORM library
)

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	Username  string
	StudentID string
	Phone     string
}

// CreateAccount inserts a profile and its zero-balance wallet atomically
func (s *Store) CreateAccount(ctx context.Context, p *domain.Profile, currency string) error {
	db, cancel := s.with(ctx)
	defer cancel()
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err // Duplicate student id, phone or email
		}
		w := domain.Wallet{WalletID: p.ID, Balance: decimal.Zero, Currency: currency}
		return tx.Create(&w).Error
	})
	return translate(err, "account")
}

// Profile fetches one profile by id
func (s *Store) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p domain.Profile
	if err := db.Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, translate(err, "profile")
	}
	return &p, nil
}

// ProfileByEmail fetches one profile by its login email
func (s *Store) ProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p domain.Profile
	if err := db.Where("email = ?", strings.ToLower(email)).Take(&p).Error; err != nil {
		return nil, translate(err, "profile")
	}
	return &p, nil
}

// SearchProfiles matches usernames case-insensitively, oldest account first
func (s *Store) SearchProfiles(ctx context.Context, fragment string, limit int) ([]domain.Profile, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	if limit <= 0 || limit > 50 {
		limit = 20 // Default page size
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(fragment))) + "%"
	var out []domain.Profile
	err := db.Where("LOWER(username) LIKE ? ESCAPE '!'", pattern).
		Order("created_at, id").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "profile")
	}
	return out, nil
}

// UpdateProfile overwrites the editable fields of an existing profile
func (s *Store) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*domain.Profile, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p domain.Profile
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&p).Error; err != nil {
			return err
		}
		fields := map[string]any{
			"username":   u.Username,
			"student_id": u.StudentID,
			"phone":      u.Phone,
		}
		if err := tx.Model(&p).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(&p).Error
	})
	if err != nil {
		return nil, translate(err, "profile")
	}
	return &p, nil
}

// UpdatePassword replaces the stored password hash
func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	db, cancel := s.with(ctx)
	defer cancel()
	return translate(db.Transaction(func(tx *gorm.DB) error {
		var p domain.Profile
		if err := tx.Select("id").Where("id = ?", id).Take(&p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Profile{}).Where("id = ?", id).Update("password_hash", hash).Error
	}), "profile")
}

// SetAvatar stores a new avatar link on the profile
func (s *Store) SetAvatar(ctx context.Context, id, url string) error {
	db, cancel := s.with(ctx)
	defer cancel()
	return translate(db.Transaction(func(tx *gorm.DB) error {
		var p domain.Profile
		if err := tx.Select("id").Where("id = ?", id).Take(&p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Profile{}).Where("id = ?", id).Update("avatar_url", url).Error
	}), "profile")
}

// ListProfiles pages through every profile with its wallet
func (s *Store) ListProfiles(ctx context.Context, offset, limit int) ([]domain.Profile, int64, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var total int64 // Total profile count
	if err := db.Model(&domain.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "profile")
	}
	var out []domain.Profile
	// Preload Wallet relation, apply offset and limit for pagination
	if err := db.Preload("Wallet").Order("created_at, id").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, translate(err, "profile")
	}
	return out, total, nil
}

// escapeLike neutralises LIKE wildcards using '!' as the escape character
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
