package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = errors.New("Missing required fields")
	ErrEmailTaken         = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a USER account. It does not require a session.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{Name: in.Name, Email: in.Email, Password: string(hash), Role: models.RoleUser}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		// lost a race with a concurrent registration
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate checks an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Exists backs the session verifier: a cookie for a deleted user is rejected.
func (s *UserService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

// Current returns the signed-in user.
func (s *UserService) Current(ctx context.Context) (*models.User, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, uid).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile changes the signed-in user's name and email.
func (s *UserService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	u, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	if err := check(v); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"name":  strings.TrimSpace(in.Name),
		"email": strings.ToLower(strings.TrimSpace(in.Email)),
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.Current(ctx)
}

// ChangePassword replaces the signed-in user's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, current, next string) error {
	u, err := s.Current(ctx)
	if err != nil {
		return err
	}
	v := validation.Violations{}
	validation.Required("new_password", next, v)
	validation.MinLength("new_password", next, 6, v)
	if err := check(v); err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(u).Update("password", string(hash)).Error
}

// DisplayName returns the user's name, falling back to the email.
func (s *UserService) DisplayName(ctx context.Context, id uint) string {
	var u models.User
	if err := s.db.WithContext(ctx).Select("name", "email").First(&u, id).Error; err != nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
