// Package account handles registration, sign-in, password changes and
// profile edits.
package account

import (
	"context"       // Deadlines
	"fmt"           // Object naming
	"io"            // Avatar uploads
	"path/filepath" // Extension parsing
	"strings"       // Normalisation
	"time"          // Token lifetimes

	"campus_wallet/internal/domain"  // Importing domain models
	"campus_wallet/internal/gateway" // Profile updates
	"campus_wallet/internal/utils"   // JWT, cache and validators

	"github.com/google/uuid"       // Profile ids and reset tokens
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
)

// Messages shown to the user
const (
	msgAllFields          = "All fields are required"
	msgDuplicateAccount   = "ID number, phone number, or email already exists"
	msgInvalidCredentials = "invalid credentials"
	msgInvalidResetToken  = "invalid or expired reset token"
)

// Store is the part of the data gateway accounts use
type Store interface {
	CreateAccount(ctx context.Context, p *domain.Profile, currency string) error
	Profile(ctx context.Context, id string) (*domain.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, u gateway.ProfileUpdate) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	SetAvatar(ctx context.Context, id, url string) error
}

// Blobs stores uploaded files and returns their public URL
type Blobs interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// Options tunes token lifetimes and defaults
type Options struct {
	JWTSecret string
	JWTTTL    time.Duration
	ResetTTL  time.Duration
	Currency  string
}

// Service implements the account operations
type Service struct {
	store Store
	blobs Blobs
	rdb   *redis.Client // Denylist, reset tokens and name cache
	opts  Options
}

// NewService creates an account Service
func NewService(store Store, blobs Blobs, rdb *redis.Client, opts Options) *Service {
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 15 * time.Minute
	}
	return &Service{store: store, blobs: blobs, rdb: rdb, opts: opts}
}

// RegisterInput is the sign-up form
type RegisterInput struct {
	Username        string `json:"username"`
	StudentID       string `json:"student_id"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates a profile and its empty wallet
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if !utils.Required(in.Username, in.StudentID, in.Phone, in.Email, in.Password, in.ConfirmPassword) {
		return nil, domain.Validation(msgAllFields)
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, domain.Validation(err.Error())
	}
	if err := utils.ValidatePassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, domain.Validation(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Gateway("failed to hash password")
	}
	p := &domain.Profile{
		ID:           uuid.NewString(),
		Username:     in.Username,
		StudentID:    in.StudentID,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := s.store.CreateAccount(ctx, p, s.opts.Currency); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.Conflict(msgDuplicateAccount)
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    p.ID,        // New profile
		"student_id": p.StudentID, // Student id
	}).Info("Account registered")
	return p, nil
}

// Login checks credentials and issues a signed token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.Required(email, password) {
		return "", domain.Validation(msgAllFields)
	}
	p, err := s.store.ProfileByEmail(ctx, email)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return "", domain.Authentication(msgInvalidCredentials)
		}
		return "", err
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return "", domain.Authentication(msgInvalidCredentials)
	}
	token, err := utils.GenerateJWT(p.ID, p.Role, s.opts.JWTSecret, s.opts.JWTTTL)
	if err != nil {
		return "", domain.Gateway("failed to generate token")
	}
	return token, nil
}

// SignOut denylists the token id until the token would have expired anyway
func (s *Service) SignOut(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ID == "" {
		return domain.ErrUnauthenticated
	}
	if s.rdb == nil {
		return domain.Gateway("sign-out requires redis")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left > 0 {
			ttl = left
		}
	}
	if err := s.rdb.Set(ctx, utils.RevokedTokenKey(claims.ID), claims.ProfileID, ttl).Err(); err != nil {
		return domain.Gateway(err.Error())
	}
	return nil
}

// Revoked reports whether a token id has been signed out. A nil client means nothing is.
func Revoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, utils.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ChangePassword replaces the caller's password
func (s *Service) ChangePassword(ctx context.Context, id domain.Identity, password, confirm string) error {
	if !id.Valid() {
		return domain.ErrUnauthenticated
	}
	return s.setPassword(ctx, id.ProfileID, password, confirm)
}

// RequestReset issues a one-time reset token for email. Unknown addresses
// return an empty token and no error.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return "", domain.Validation(err.Error())
	}
	if s.rdb == nil {
		return "", domain.Gateway("password reset requires redis")
	}
	p, err := s.store.ProfileByEmail(ctx, email)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return "", nil
		}
		return "", err
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, utils.ResetTokenKey(token), p.ID, s.opts.ResetTTL).Err(); err != nil {
		return "", domain.Gateway(err.Error())
	}
	logrus.WithField("user_id", p.ID).Info("Password reset requested")
	return token, nil
}

// ResetPassword consumes a reset token and sets the new password
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := utils.ValidatePassword(password, confirm); err != nil {
		return domain.Validation(err.Error())
	}
	if s.rdb == nil || token == "" {
		return domain.Authentication(msgInvalidResetToken)
	}
	profileID, err := s.rdb.GetDel(ctx, utils.ResetTokenKey(token)).Result()
	if err == redis.Nil {
		return domain.Authentication(msgInvalidResetToken)
	} else if err != nil {
		return domain.Gateway(err.Error())
	}
	return s.setPassword(ctx, profileID, password, confirm)
}

func (s *Service) setPassword(ctx context.Context, profileID, password, confirm string) error {
	if err := utils.ValidatePassword(password, confirm); err != nil {
		return domain.Validation(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Gateway("failed to hash password")
	}
	if err := s.store.UpdatePassword(ctx, profileID, string(hash)); err != nil {
		return err
	}
	logrus.WithField("user_id", profileID).Info("Password changed")
	return nil
}

// Profile returns the caller's profile
func (s *Service) Profile(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.Profile(ctx, id.ProfileID)
}

// ProfileInput is the edit-profile form. The avatar only changes through UploadAvatar.
type ProfileInput struct {
	Username  string `json:"username"`
	StudentID string `json:"student_id"`
	Phone     string `json:"phone"`
}

// UpdateProfile saves the editable fields and drops the cached display name
func (s *Service) UpdateProfile(ctx context.Context, id domain.Identity, in ProfileInput) (*domain.Profile, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	in.Username = strings.TrimSpace(in.Username)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Phone = strings.TrimSpace(in.Phone)
	if !utils.Required(in.Username, in.StudentID, in.Phone) {
		return nil, domain.Validation("Please fill out all fields.")
	}
	p, err := s.store.UpdateProfile(ctx, id.ProfileID, gateway.ProfileUpdate{
		Username:  in.Username,
		StudentID: in.StudentID,
		Phone:     in.Phone,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.Conflict(msgDuplicateAccount)
		}
		return nil, err
	}
	_ = utils.DeleteCache(ctx, s.rdb, utils.ProfileNameKey(id.ProfileID)) // Invalidate display name cache
	logrus.WithField("user_id", id.ProfileID).Info("Profile updated")
	return p, nil
}

// avatarTypes are the accepted image extensions
var avatarTypes = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// UploadAvatar stores the image and points the profile at it
func (s *Service) UploadAvatar(ctx context.Context, id domain.Identity, filename string, r io.Reader) (string, error) {
	if !id.Valid() {
		return "", domain.ErrUnauthenticated
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarTypes[ext] {
		return "", domain.Validation("unsupported image type")
	}
	name := fmt.Sprintf("%s-%d%s", id.ProfileID, time.Now().UnixNano(), ext)
	url, err := s.blobs.Put(ctx, name, r)
	if err != nil {
		return "", err
	}
	if err := s.store.SetAvatar(ctx, id.ProfileID, url); err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": id.ProfileID,
		"url":     url,
	}).Info("Avatar uploaded")
	return url, nil
}
