package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drukmotors/dealership-backend/internal/app/model"
	"github.com/drukmotors/dealership-backend/internal/storage"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/logger"
	"github.com/drukmotors/dealership-backend/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// RegisterInput carries the customer sign-up fields.
type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// ProfileInput carries the fields a user may change on their own profile.
type ProfileInput struct {
	Phone string
	Image *ImageUpload
}

// AuthService handles registration, credential login and session lookup.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (store.Record, error)
	// Login accepts either the email or the username as identifier.
	Login(ctx context.Context, identifier, password string) (store.Record, *util.TokenPair, error)
	GetByID(ctx context.Context, id string) (store.Record, error)
	// UpdateProfile changes the authenticated user's own contact details.
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (store.Record, error)
}

type authService struct {
	store         store.Store
	images        storage.ImageStorage
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(s store.Store, images storage.ImageStorage, jwtSecret string, accessExpiry, refreshExpiry time.Duration) AuthService {
	return &authService{
		store:         s,
		images:        images,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (store.Record, error) {
	logger.Debug("Registering new user", map[string]interface{}{
		"username": input.Username,
		"email":    input.Email,
	})

	taken, err := s.store.Count(ctx, "users", store.Or{
		store.Eq("username", input.Username),
		store.Eq("email", input.Email),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken > 0 {
		logger.Warn("Registration rejected, user exists", map[string]interface{}{
			"username": input.Username,
		})
		return nil, ErrUserAlreadyExists
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec, err := s.store.Insert(ctx, "users", store.Record{
		"id":        uuid.NewString(),
		"username":  input.Username,
		"email":     input.Email,
		"password":  hashed,
		"phone":     input.Phone,
		"address":   input.Address,
		"role":      string(model.RoleCustomer),
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  rec["id"],
		"username": input.Username,
	})
	delete(rec, "password")
	return rec, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (store.Record, *util.TokenPair, error) {
	matches, _, err := s.store.List(ctx, "users", store.Query{
		Where: store.Or{
			store.Eq("email", identifier),
			store.Eq("username", identifier),
		},
		Sort:  store.Sort{Field: "id"},
		Limit: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(matches) == 0 {
		logger.Warn("Login failed, user not found", map[string]interface{}{
			"identifier": identifier,
		})
		return nil, nil, ErrInvalidCredentials
	}

	user := matches[0]
	hash, _ := user["password"].(string)
	if !util.VerifyPassword(hash, password) {
		logger.Warn("Login failed, wrong password", map[string]interface{}{
			"identifier": identifier,
		})
		return nil, nil, ErrInvalidCredentials
	}

	id, _ := user["id"].(string)
	username, _ := user["username"].(string)
	role, _ := user["role"].(string)

	tokens, err := util.GenerateTokenPair(id, username, role, s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": id,
		"role":    role,
	})
	delete(user, "password")
	return user, tokens, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (store.Record, error) {
	rec, err := s.store.Get(ctx, "users", store.CoerceID(id))
	if err != nil {
		return nil, err
	}
	delete(rec, "password")
	return rec, nil
}

func (s *authService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (store.Record, error) {
	fields := store.Record{"phone": input.Phone}

	if input.Image != nil && len(input.Image.Data) > 0 {
		url, err := s.images.Store(ctx, "profiles", input.Image.Filename, input.Image.ContentType, input.Image.Data)
		if err != nil {
			// The profile update still lands; the image is best effort
			if errors.Is(err, storage.ErrNotConfigured) {
				logger.Warn("Profile image skipped, storage not configured", map[string]interface{}{
					"user_id": id,
				})
			} else {
				logger.Error("Profile image upload failed", err, map[string]interface{}{
					"user_id": id,
				})
			}
		} else {
			fields["profileImage"] = url
		}
	}

	rec, err := s.store.Update(ctx, "users", id, fields)
	if err != nil {
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": id,
	})
	delete(rec, "password")
	return rec, nil
}
