package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/errors"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/store"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	// Identifier is the email or the username
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register creates a customer account
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), req)
	if err != nil {
		if stderrors.Is(err, service.ErrUserAlreadyExists) {
			errors.Conflict(c, errors.ConflictDuplicate, "Username or email already taken")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"username": req.Username,
		})
		errors.InternalError(c, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login authenticates by email or username and issues a token pair
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	user, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if stderrors.Is(err, service.ErrInvalidCredentials) {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthInvalidCredentials, "Invalid credentials")
			return
		}
		log.Error("Login failed", err, nil)
		errors.InternalError(c, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFound(c, errors.RecordNotFound, "User not found")
			return
		}
		log.Error("Failed to load user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UpdateMe updates the authenticated user's own profile from a multipart form
// PUT /api/v1/auth/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	input := service.ProfileInput{
		Phone: c.PostForm("phone"),
		Image: readImage(c, log, "profileImage"),
	}

	user, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.NotFound(c, errors.RecordNotFound, "User not found")
			return
		}
		log.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}
