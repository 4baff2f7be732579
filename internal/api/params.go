package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
)

var (
	errInvalidID = errors.New("invalid id")
	errForbidden = errors.New("permission denied")
)

// actingUser is the authenticated caller as seen by handlers.
type actingUser struct {
	ID   uuid.UUID
	Role database.Role
}

func actingUserFromContext(c *gin.Context) (actingUser, bool) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return actingUser{}, false
	}
	role, ok := middleware.RoleFromContext(c)
	if !ok {
		return actingUser{}, false
	}
	return actingUser{ID: id, Role: role}, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// pageParams are the shared pagination/sorting query parameters.
type pageParams struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}
