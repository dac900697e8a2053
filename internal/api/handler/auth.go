package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"urbaneye/backend/internal/api/resp"
	"urbaneye/backend/internal/auth"
	"urbaneye/backend/internal/models"
	"urbaneye/backend/internal/storage"
)

type signupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Division string `json:"division"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Division string `json:"division"`
}

// Signup registers a citizen account.
func (h *Handler) Signup(c *gin.Context) {
	h.registerUser(c, models.RoleUser)
}

// AdminSignup registers a division admin. Both the canonical and any legacy
// admin routes call this same function directly.
func (h *Handler) AdminSignup(c *gin.Context) {
	h.registerUser(c, models.RoleAdmin)
}

func (h *Handler) registerUser(c *gin.Context, role string) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if role == models.RoleAdmin && strings.TrimSpace(req.Division) == "" {
		resp.BadRequest(c, "division is required for admin accounts")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	count, err := h.Storage.CountUsersByEmail(email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if count > 0 {
		resp.Conflict(c, "email already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := &models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: string(hashed),
		Role:     role,
		Division: strings.TrimSpace(req.Division),
		IsActive: true,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		h.fail(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, user.Division, h.Config.JWTSecret, h.Config.JWTTTL)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Logger.Info("user registered", zap.String("id", user.ID), zap.String("role", user.Role))
	resp.Created(c, gin.H{"token": token, "user": user})
}

// Login authenticates a citizen.
func (h *Handler) Login(c *gin.Context) {
	h.loginUser(c, models.RoleUser)
}

// AdminLogin authenticates an admin, optionally checking the division the
// client claims to manage.
func (h *Handler) AdminLogin(c *gin.Context) {
	h.loginUser(c, models.RoleAdmin)
}

func (h *Handler) loginUser(c *gin.Context, role string) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.Storage.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			resp.Unauthorized(c, "invalid credentials")
			return
		}
		h.fail(c, err)
		return
	}
	if user.Role != role || !user.IsActive {
		resp.Unauthorized(c, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		resp.Unauthorized(c, "invalid credentials")
		return
	}
	if role == models.RoleAdmin && req.Division != "" && user.Division != req.Division {
		resp.Unauthorized(c, "admin not authorized for this division")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	user.LoginCount++
	if err := h.Storage.UpdateUser(user); err != nil {
		h.Logger.Warn("failed to stamp login info", zap.String("id", user.ID), zap.Error(err))
	}

	token, err := auth.GenerateToken(user.ID, user.Role, user.Division, h.Config.JWTSecret, h.Config.JWTTTL)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp.OK(c, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	actor := auth.CurrentActor(c)
	user, err := h.Storage.GetUserByID(actor.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			resp.NotFound(c, "user not found")
			return
		}
		h.fail(c, err)
		return
	}
	resp.OK(c, gin.H{"user": user})
}
