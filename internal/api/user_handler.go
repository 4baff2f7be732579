package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/auth"
	"ongelEstate/internal/database"
	"ongelEstate/internal/query"
)

// UserHandler serves the admin-only account management endpoints.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

const defaultUserPageSize = 12

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
}

type userFilter struct {
	pageParams
	Role   database.Role `form:"role"`
	Search string        `form:"search"`
}

// FindAll lists accounts with pagination.
func (h *UserHandler) FindAll(c *gin.Context) {
	var f userFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).Model(&database.User{})
	if f.Role != "" {
		tx = tx.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		tx = tx.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	page, limit := query.ClampPage(f.Page, f.Limit, defaultUserPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "createdAt", userSortColumns)

	result, err := query.Run[database.User](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list users failed", slog.Any("error", err))
		Internal(c, "failed to list users")
		return
	}

	c.JSON(http.StatusOK, result)
}

// FindAgents lists active agent accounts, for assignment dropdowns.
func (h *UserHandler) FindAgents(c *gin.Context) {
	var agents []database.User
	err := h.db.WithContext(c.Request.Context()).
		Where("role = ? AND is_active = ?", database.RoleAgent, true).
		Order("first_name ASC").
		Find(&agents).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("list agents failed", slog.Any("error", err))
		Internal(c, "failed to list agents")
		return
	}

	c.JSON(http.StatusOK, agents)
}

type createUserRequest struct {
	Email     string        `json:"email" binding:"required,email"`
	Password  string        `json:"password" binding:"required,min=8"`
	FirstName string        `json:"firstName" binding:"required"`
	LastName  string        `json:"lastName" binding:"required"`
	Role      database.Role `json:"role"`
	Phone     string        `json:"phone"`
	Avatar    string        `json:"avatar"`
}

// Create registers an account. Duplicate emails are a conflict.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = database.RoleAgent
	}
	if role != database.RoleAdmin && role != database.RoleAgent {
		BadRequest(c, "unknown role")
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		Internal(c, "failed to query users")
		return
	}
	if count > 0 {
		Conflict(c, "email already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	user := database.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Phone:        req.Phone,
		Avatar:       req.Avatar,
		IsActive:     true,
	}

	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create user failed", slog.Any("error", err))
		Internal(c, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

type initAdminRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// InitAdmin creates the very first admin account. Open only while no admin
// exists; afterwards it always answers 403.
func (h *UserHandler) InitAdmin(c *gin.Context) {
	var req initAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var admins int64
	if err := h.db.WithContext(ctx).Model(&database.User{}).
		Where("role = ?", database.RoleAdmin).
		Count(&admins).Error; err != nil {
		Internal(c, "failed to query users")
		return
	}
	if admins > 0 {
		Forbidden(c, "an admin account already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	user := database.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         database.RoleAdmin,
		IsActive:     true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create initial admin failed", slog.Any("error", err))
		Internal(c, "failed to create admin")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// FindOne returns one account.
func (h *UserHandler) FindOne(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid user id")
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to query user")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Email     *string        `json:"email" binding:"omitempty,email"`
	Password  *string        `json:"password" binding:"omitempty,min=8"`
	FirstName *string        `json:"firstName"`
	LastName  *string        `json:"lastName"`
	Role      *database.Role `json:"role"`
	Phone     *string        `json:"phone"`
	Avatar    *string        `json:"avatar"`
	IsActive  *bool          `json:"isActive"`
}

// Update patches an account; password changes are re-hashed.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to query user")
		return
	}

	updates := map[string]any{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			var count int64
			if err := h.db.WithContext(ctx).Model(&database.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count).Error; err != nil {
				Internal(c, "failed to query users")
				return
			}
			if count > 0 {
				Conflict(c, "email already in use")
				return
			}
			updates["email"] = email
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			Internal(c, "failed to hash password")
			return
		}
		updates["password_hash"] = hash
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Role != nil {
		if *req.Role != database.RoleAdmin && *req.Role != database.RoleAgent {
			BadRequest(c, "unknown role")
			return
		}
		updates["role"] = *req.Role
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update user failed", slog.Any("error", err))
			Internal(c, "failed to update user")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(&user, "id = ?", user.ID).Error; err != nil {
		Internal(c, "failed to reload user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes an account. Admins cannot delete themselves.
func (h *UserHandler) Delete(c *gin.Context) {
	acting, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid user id")
		return
	}

	if id == acting.ID {
		BadRequest(c, "cannot delete your own account")
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&database.User{}, "id = ?", id)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete user failed", slog.Any("error", result.Error))
		Internal(c, "failed to delete user")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "user not found")
		return
	}

	c.Status(http.StatusNoContent)
}
