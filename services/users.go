// services/users.go - Accounts and credentials
package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"muslimlife/models"
)

const MinPasswordLength = 8

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, username, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, invalid("email and username are required")
	}
	if len(password) < MinPasswordLength {
		return nil, invalid("password must be at least %d characters", MinPasswordLength)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check existing user")
	}
	if count > 0 {
		return nil, errors.Wrap(ErrConflict, "email or username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	if displayName == "" {
		displayName = username
	}

	user := &models.User{
		Email:       email,
		Username:    username,
		Password:    string(hash),
		DisplayName: displayName,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

// Authenticate accepts a username or email with its password.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, invalid("username and password required")
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error; err != nil {
		return nil, errors.Wrap(ErrForbidden, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.Wrap(ErrForbidden, "invalid credentials")
	}

	now := time.Now()
	user.LastLogin = &now
	db.Model(&user).Update("last_login", now)
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	return &user, nil
}

// UpdateProfile changes the display name and avatar. Empty values are kept.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, displayName, avatar string) (*models.User, error) {
	updates := map[string]interface{}{}
	if displayName = strings.TrimSpace(displayName); displayName != "" {
		updates["display_name"] = displayName
	}
	if avatar != "" {
		updates["avatar"] = avatar
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "update profile")
		}
	}
	return s.Get(ctx, id)
}

// ================== ADMIN ==================

type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// List pages through accounts, optionally filtered by a username or email
// fragment.
func (s *UserService) List(ctx context.Context, search string, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	out := &UserPage{Page: page, Limit: limit}
	if err := query.Count(&out.Total).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	if err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&out.Users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return out, nil
}

// SetAdmin grants or revokes admin rights. Admins cannot demote themselves.
func (s *UserService) SetAdmin(ctx context.Context, actorID, id uint, admin bool) (*models.User, error) {
	if actorID == id && !admin {
		return nil, errors.Wrap(ErrConflict, "cannot revoke your own admin rights")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", admin).Error; err != nil {
		return nil, errors.Wrap(err, "update admin flag")
	}
	return s.Get(ctx, id)
}

// ResetPassword replaces a user's password hash.
func (s *UserService) ResetPassword(ctx context.Context, id uint, password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", string(hash))
	if res.Error != nil {
		return errors.Wrap(res.Error, "reset password")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "reset password")
	}
	return nil
}

// Delete removes a non-admin account and every row it owns.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return errors.Wrap(ErrForbidden, "cannot delete admin users")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.UserAchievement{},
			&models.AchievementProgress{},
			&models.CommunityMember{},
			&models.UserGoal{},
			&models.PrayerLog{},
			&models.MoodEntry{},
			&models.QuizAttempt{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return errors.Wrap(err, "delete user data")
			}
		}
		if err := tx.Delete(user).Error; err != nil {
			return errors.Wrap(err, "delete user")
		}
		return nil
	})
}
